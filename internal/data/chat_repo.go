package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/studyzone/studyzone-api/internal/data/pgxutil"
	"github.com/studyzone/studyzone-api/internal/domain/model"
)

// ChatRepo provides database operations for AI chat history.
type ChatRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewChatRepo creates a new ChatRepo with real time provider.
func NewChatRepo(db *sql.DB) *ChatRepo {
	return &ChatRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewChatRepoWithTimeProvider creates a new ChatRepo with a custom time provider (useful for tests).
func NewChatRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *ChatRepo {
	return &ChatRepo{DB: db, timeProvider: tp}
}

// Insert appends one chat message for a student.
func (r *ChatRepo) Insert(
	ctx context.Context,
	studentID string,
	role model.ChatRole,
	content string,
) (*model.ChatMessage, error) {
	if studentID == "" {
		return nil, errors.New("student_id is required")
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown chat role %q", role)
	}
	if content == "" {
		return nil, errors.New("content is required")
	}

	var out model.ChatMessage
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO chat_messages (student_id, role, content, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id, student_id, role, content, created_at`,
			studentID, role, content, r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.ChatMessage])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to insert chat message: %w", err)
	}
	return &out, nil
}

// History lists a student's chat messages, newest first.
func (r *ChatRepo) History(
	ctx context.Context,
	studentID string,
	opts model.ChatHistoryOptions,
) ([]*model.ChatMessage, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	var rowsOut []model.ChatMessage
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id, student_id, role, content, created_at
			FROM chat_messages
			WHERE student_id = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3`,
			studentID, limit, offset,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.ChatMessage])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list chat history: %w", err)
	}

	res := make([]*model.ChatMessage, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Recent returns the student's last n messages in chronological order, for
// building LLM context windows.
func (r *ChatRepo) Recent(ctx context.Context, studentID string, n int) ([]*model.ChatMessage, error) {
	if n <= 0 {
		n = 10
	}

	var rowsOut []model.ChatMessage
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id, student_id, role, content, created_at FROM (
				SELECT id, student_id, role, content, created_at
				FROM chat_messages
				WHERE student_id = $1
				ORDER BY created_at DESC
				LIMIT $2
			) latest ORDER BY created_at ASC`,
			studentID, n,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.ChatMessage])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to load recent chat messages: %w", err)
	}

	res := make([]*model.ChatMessage, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// PruneOlderThan deletes chat messages created before the cutoff and returns
// the number of rows removed.
func (r *ChatRepo) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx,
			`DELETE FROM chat_messages WHERE created_at < $1`, cutoff.UTC())
		if err != nil {
			return err
		}
		removed = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune chat messages: %w", err)
	}
	return removed, nil
}
