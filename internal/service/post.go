package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devconnect/devconnect/internal/metrics"
	"github.com/devconnect/devconnect/internal/model"
	"github.com/devconnect/devconnect/internal/repository"
)

// PostService handles posts, likes and comments.
type PostService struct {
	posts   PostStore
	users   UserStore
	metrics metrics.Recorder
}

// NewPostService creates a new PostService.
func NewPostService(posts PostStore, users UserStore, recorder metrics.Recorder) *PostService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &PostService{
		posts:   posts,
		users:   users,
		metrics: recorder,
	}
}

// Create publishes a post authored by the acting user.
func (s *PostService) Create(ctx context.Context, userID, text string) (*model.Post, error) {
	if err := requireText(text); err != nil {
		return nil, err
	}

	author, err := s.author(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		ID:        generateID(),
		UserID:    author.ID,
		Text:      text,
		Name:      author.Name,
		Avatar:    author.Avatar,
		Likes:     []model.Like{},
		Comments:  []model.Comment{},
		CreatedAt: time.Now().UTC(),
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.metrics.IncPostCreated()

	return post, nil
}

// List returns all posts, newest first.
func (s *PostService) List(ctx context.Context) ([]*model.Post, error) {
	posts, err := s.posts.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// Get returns a post by ID.
func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// Update replaces the text of a post owned by the acting user.
func (s *PostService) Update(ctx context.Context, userID, id, text string) (*model.Post, error) {
	if err := requireText(text); err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, func(p *model.Post) error {
		if err := checkOwner(p, userID, ErrPostNotFound); err != nil {
			return err
		}
		p.Text = text
		return nil
	})
}

// Delete removes a post owned by the acting user.
func (s *PostService) Delete(ctx context.Context, userID, id string) error {
	post, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := checkOwner(post, userID, ErrPostNotFound); err != nil {
		return err
	}

	if err := s.posts.DeletePost(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.metrics.IncPostDeleted()

	return nil
}

// Like records the acting user's like and returns the likes.
func (s *PostService) Like(ctx context.Context, userID, id string) ([]model.Like, error) {
	post, err := s.mutate(ctx, id, func(p *model.Post) error {
		if p.LikedBy(userID) {
			return ErrAlreadyLiked
		}
		p.Likes = append([]model.Like{{UserID: userID}}, p.Likes...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPostLiked()

	return post.Likes, nil
}

// Unlike removes the acting user's like and returns the likes.
func (s *PostService) Unlike(ctx context.Context, userID, id string) ([]model.Like, error) {
	post, err := s.mutate(ctx, id, func(p *model.Post) error {
		if !p.LikedBy(userID) {
			return ErrNotLiked
		}
		likes := make([]model.Like, 0, len(p.Likes))
		for _, l := range p.Likes {
			if l.UserID != userID {
				likes = append(likes, l)
			}
		}
		p.Likes = likes
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post.Likes, nil
}

// Comment adds a comment by the acting user and returns the comments.
func (s *PostService) Comment(ctx context.Context, userID, id, text string) ([]model.Comment, error) {
	if err := requireText(text); err != nil {
		return nil, err
	}

	author, err := s.author(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := model.Comment{
		ID:        generateID(),
		UserID:    author.ID,
		Text:      text,
		Name:      author.Name,
		Avatar:    author.Avatar,
		CreatedAt: time.Now().UTC(),
	}

	post, err := s.mutate(ctx, id, func(p *model.Post) error {
		p.Comments = append([]model.Comment{comment}, p.Comments...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCommentAdded()

	return post.Comments, nil
}

// DeleteComment removes a comment written by the acting user and returns
// the remaining comments.
func (s *PostService) DeleteComment(ctx context.Context, userID, id, commentID string) ([]model.Comment, error) {
	post, err := s.mutate(ctx, id, func(p *model.Post) error {
		if err := checkOwner(p.Comment(commentID), userID, ErrCommentNotFound); err != nil {
			return err
		}
		comments := make([]model.Comment, 0, len(p.Comments))
		for _, c := range p.Comments {
			if c.ID != commentID {
				comments = append(comments, c)
			}
		}
		p.Comments = comments
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}

// mutate runs a guarded read-modify-write of a post.
func (s *PostService) mutate(ctx context.Context, id string, apply func(p *model.Post) error) (*model.Post, error) {
	var result *model.Post
	err := retryOnConflict(ctx, s.metrics, func() error {
		post, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		if post == nil {
			return ErrPostNotFound
		}
		if err := apply(post); err != nil {
			return err
		}

		err = s.posts.UpdatePost(ctx, post)
		switch {
		case err == nil:
			result = post
			return nil
		case errors.Is(err, repository.ErrVersionConflict):
			return err
		case errors.Is(err, repository.ErrPostNotFound):
			return ErrPostNotFound
		default:
			return fmt.Errorf("failed to update post: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// find returns the post, or nil when the ID does not resolve.
func (s *PostService) find(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

func (s *PostService) author(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func requireText(text string) error {
	if strings.TrimSpace(text) == "" {
		var violations fieldErrors
		violations.add("text", "Text is required")
		return violations.err()
	}
	return nil
}
