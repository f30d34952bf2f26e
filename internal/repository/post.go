package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/devconnect/devconnect/internal/model"
)

// ErrPostNotFound is returned when a post ID does not resolve.
var ErrPostNotFound = errors.New("post not found")

const postColumns = `id, user_id, text, name, avatar, likes, comments, version, created_at`

// CreatePost inserts a new post document.
func (r *Repository) CreatePost(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO posts (id, user_id, text, name, avatar, likes, comments, version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		post.ID,
		post.UserID,
		post.Text,
		post.Name,
		post.Avatar,
		nonNil(post.Likes),
		nonNil(post.Comments),
		post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	post.Version = 1
	return nil
}

// GetPostByID retrieves a post by its ID.
func (r *Repository) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post, err := scanPost(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return post, nil
}

// ListPosts returns all posts, newest first.
func (r *Repository) ListPosts(ctx context.Context) ([]*model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := []*model.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, nil
}

// UpdatePost rewrites the post document if its version is unchanged since
// it was read. On success post.Version is advanced.
func (r *Repository) UpdatePost(ctx context.Context, post *model.Post) error {
	query := `
		UPDATE posts SET
			text = $3,
			likes = $4,
			comments = $5,
			version = version + 1
		WHERE id = $1 AND version = $2
	`

	result, err := r.pool.Exec(ctx, query,
		post.ID,
		post.Version,
		post.Text,
		nonNil(post.Likes),
		nonNil(post.Comments),
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return r.missingOrConflict(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, post.ID, ErrPostNotFound)
	}

	post.Version++
	return nil
}

// DeletePost removes a post by ID.
func (r *Repository) DeletePost(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

func scanPost(row pgx.Row) (*model.Post, error) {
	var p model.Post
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Text,
		&p.Name,
		&p.Avatar,
		&p.Likes,
		&p.Comments,
		&p.Version,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Likes = nonNil(p.Likes)
	p.Comments = nonNil(p.Comments)
	return &p, nil
}
