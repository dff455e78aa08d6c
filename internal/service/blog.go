package service

import (
	"context"
	"errors"

	"github.com/studyzone/studyzone-api/internal/data"
	"github.com/studyzone/studyzone-api/internal/domain/model"
)

// blogStore is satisfied by *data.BlogRepo.
type blogStore interface {
	Create(ctx context.Context, authorID string, req *model.CreateBlogPostRequest) (*model.BlogPost, error)
	GetByID(ctx context.Context, id string) (*model.BlogPost, error)
	GetBySlug(ctx context.Context, slug string) (*model.BlogPost, error)
	List(ctx context.Context, opts model.BlogListOptions) ([]*model.BlogPost, error)
	Update(ctx context.Context, id string, req model.UpdateBlogPostRequest) (*model.BlogPost, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// BlogServiceOptions groups dependencies for BlogService.
type BlogServiceOptions struct {
	Posts blogStore
}

// BlogService exposes the public blog and its admin CRUD surface.
type BlogService struct {
	posts blogStore
}

// NewBlogService constructs a new BlogService.
func NewBlogService(opts BlogServiceOptions) (*BlogService, error) {
	if opts.Posts == nil {
		return nil, errors.New("blog store is required")
	}
	return &BlogService{posts: opts.Posts}, nil
}

// Create creates a post by the given author, optionally publishing it
// immediately.
func (s *BlogService) Create(ctx context.Context, authorID string, req *model.CreateBlogPostRequest) (*model.BlogPost, error) {
	return s.posts.Create(ctx, authorID, req)
}

// GetByID returns a post by id, published or not. Admin surface.
func (s *BlogService) GetByID(ctx context.Context, id string) (*model.BlogPost, error) {
	return s.posts.GetByID(ctx, id)
}

// GetPublishedBySlug returns a published post by slug. Drafts read as
// not found to the public surface.
func (s *BlogService) GetPublishedBySlug(ctx context.Context, slug string) (*model.BlogPost, error) {
	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !post.Published {
		// Drafts must be indistinguishable from missing posts publicly.
		return nil, data.ErrBlogPostNotFound
	}
	return post, nil
}

// ListPublished returns published posts, newest first, optionally filtered
// by category.
func (s *BlogService) ListPublished(ctx context.Context, category *string, limit, offset int) ([]*model.BlogPost, error) {
	return s.posts.List(ctx, model.BlogListOptions{
		PublishedOnly: true,
		Category:      category,
		Limit:         limit,
		Offset:        offset,
	})
}

// ListAll returns all posts including drafts. Admin surface.
func (s *BlogService) ListAll(ctx context.Context, limit, offset int) ([]*model.BlogPost, error) {
	return s.posts.List(ctx, model.BlogListOptions{Limit: limit, Offset: offset})
}

// Update applies partial updates to a post. First publish stamps the
// publication time; republishing keeps the original timestamp.
func (s *BlogService) Update(ctx context.Context, id string, req model.UpdateBlogPostRequest) (*model.BlogPost, error) {
	return s.posts.Update(ctx, id, req)
}

// Delete removes a post. Reports whether a row was deleted.
func (s *BlogService) Delete(ctx context.Context, id string) (bool, error) {
	return s.posts.Delete(ctx, id)
}
