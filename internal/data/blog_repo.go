package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/studyzone/studyzone-api/internal/data/pgxutil"
	"github.com/studyzone/studyzone-api/internal/domain/model"
)

// BlogRepo provides database operations for blog posts.
type BlogRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewBlogRepo creates a new BlogRepo with real time provider.
func NewBlogRepo(db *sql.DB) *BlogRepo {
	return &BlogRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewBlogRepoWithTimeProvider creates a new BlogRepo with a custom time provider (useful for tests).
func NewBlogRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *BlogRepo {
	return &BlogRepo{DB: db, timeProvider: tp}
}

const blogSelect = `
	SELECT b.id, b.title, b.slug, b.category, b.excerpt, b.content, b.author_id,
	       p.full_name AS author_name, b.published, b.published_at, b.created_at, b.updated_at
	FROM blog_posts b
	LEFT JOIN profiles p ON p.id = b.author_id`

// Create inserts a new blog post authored by authorID.
func (r *BlogRepo) Create(
	ctx context.Context,
	authorID string,
	req *model.CreateBlogPostRequest,
) (*model.BlogPost, error) {
	if req == nil {
		return nil, errors.New("create blog post request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(authorID) == "" {
		return nil, errors.New("author_id is required")
	}

	now := r.timeProvider.Now().UTC()
	var publishedAt *time.Time
	if req.Publish {
		t := now
		publishedAt = &t
	}

	var id string
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `
			INSERT INTO blog_posts (title, slug, category, excerpt, content, author_id, published, published_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
			RETURNING id`,
			strings.TrimSpace(req.Title),
			strings.TrimSpace(req.Slug),
			strings.TrimSpace(req.Category),
			req.Excerpt,
			req.Content,
			authorID,
			req.Publish,
			publishedAt,
			now,
		).Scan(&id)
	}); err != nil {
		return nil, r.mapWriteErr(err)
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves a blog post by ID.
func (r *BlogRepo) GetByID(ctx context.Context, id string) (*model.BlogPost, error) {
	return r.getByQuery(ctx, blogSelect+` WHERE b.id = $1`, id)
}

// GetBySlug retrieves a blog post by slug.
func (r *BlogRepo) GetBySlug(ctx context.Context, slug string) (*model.BlogPost, error) {
	return r.getByQuery(ctx, blogSelect+` WHERE b.slug = $1`, slug)
}

// List retrieves blog posts, newest first.
func (r *BlogRepo) List(ctx context.Context, opts model.BlogListOptions) ([]*model.BlogPost, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := max(opts.Offset, 0)

	query := blogSelect + ` WHERE 1=1`
	args := []any{}
	if opts.PublishedOnly {
		query += ` AND b.published`
	}
	if opts.Category != nil {
		args = append(args, *opts.Category)
		query += fmt.Sprintf(" AND b.category = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY b.created_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	var rowsOut []model.BlogPost
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.BlogPost])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list blog posts: %w", err)
	}

	res := make([]*model.BlogPost, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update updates fields of a blog post. Setting Publish to true stamps
// published_at on first publish only.
func (r *BlogRepo) Update(
	ctx context.Context,
	id string,
	req model.UpdateBlogPostRequest,
) (*model.BlogPost, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	setParts := make([]string, 0, 7)
	args := make([]any, 0, 8)
	nextIdx := func() int { return len(args) + 1 }

	if req.Title != nil {
		setParts = append(setParts, fmt.Sprintf("title = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Title))
	}
	if req.Slug != nil {
		setParts = append(setParts, fmt.Sprintf("slug = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Slug))
	}
	if req.Category != nil {
		setParts = append(setParts, fmt.Sprintf("category = $%d", nextIdx()))
		args = append(args, strings.TrimSpace(*req.Category))
	}
	if req.Excerpt != nil {
		setParts = append(setParts, fmt.Sprintf("excerpt = $%d", nextIdx()))
		args = append(args, *req.Excerpt)
	}
	if req.Content != nil {
		setParts = append(setParts, fmt.Sprintf("content = $%d", nextIdx()))
		args = append(args, *req.Content)
	}
	if req.Publish != nil {
		setParts = append(setParts, fmt.Sprintf("published = $%d", nextIdx()))
		args = append(args, *req.Publish)
		if *req.Publish {
			setParts = append(setParts,
				fmt.Sprintf("published_at = COALESCE(published_at, $%d)", nextIdx()))
			args = append(args, r.timeProvider.Now().UTC())
		}
	}
	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", nextIdx()))
	args = append(args, r.timeProvider.Now().UTC())

	args = append(args, id)
	query := "UPDATE blog_posts SET " + strings.Join(setParts, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args))

	var affected int64
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	}); err != nil {
		return nil, r.mapWriteErr(err)
	}
	if affected == 0 {
		return nil, ErrBlogPostNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete deletes a blog post by ID.
func (r *BlogRepo) Delete(ctx context.Context, id string) (bool, error) {
	var rows int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete blog post: %w", err)
	}
	return rows > 0, nil
}

func (r *BlogRepo) getByQuery(ctx context.Context, query, arg string) (*model.BlogPost, error) {
	var out model.BlogPost
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, arg)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.BlogPost])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBlogPostNotFound
		}
		return nil, fmt.Errorf("failed to get blog post: %w", err)
	}
	return &out, nil
}

func (r *BlogRepo) mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrBlogPostSlugExists
	}
	return fmt.Errorf("blog post write failed: %w", err)
}
