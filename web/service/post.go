package service

import (
	"strings"

	"github.com/miniblog/miniblog/database"
	"github.com/miniblog/miniblog/database/model"
	"github.com/miniblog/miniblog/logger"
	"github.com/miniblog/miniblog/util/common"
)

// PostForm carries the editable fields of a post as submitted by the browser.
type PostForm struct {
	Title   string `form:"title"`
	Author  string `form:"author"`
	Content string `form:"content"`
}

// Validate rejects a form with any blank field.
func (f *PostForm) Validate() error {
	if strings.TrimSpace(f.Title) == "" || strings.TrimSpace(f.Author) == "" || strings.TrimSpace(f.Content) == "" {
		return common.ValidationError("errors.post.required", "title, author and content are required")
	}
	return nil
}

type PostService struct{}

func (s *PostService) GetPosts() ([]*model.Post, error) {
	db := database.GetDB()
	var posts []*model.Post
	err := db.Model(model.Post{}).Order("id ASC").Find(&posts).Error
	if err != nil {
		return nil, common.StoreError("errors.post.load", "could not load posts", err)
	}
	return posts, nil
}

func (s *PostService) GetPost(id int) (*model.Post, error) {
	db := database.GetDB()
	post := &model.Post{}
	err := db.Model(model.Post{}).First(post, id).Error
	if database.IsNotFound(err) {
		return nil, common.NotFoundError("errors.post.notFound", "post not found")
	} else if err != nil {
		return nil, common.StoreError("errors.post.load", "could not load post", err)
	}
	return post, nil
}

// AddPost inserts a post whose image has already been stored.
func (s *PostService) AddPost(form *PostForm, image string) (*model.Post, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	if image == "" {
		return nil, common.ValidationError("errors.post.imageRequired", "an image is required")
	}
	post := &model.Post{
		Title:   form.Title,
		Author:  form.Author,
		Content: form.Content,
		Image:   image,
	}
	db := database.GetDB()
	if err := db.Create(post).Error; err != nil {
		logger.Warning("insert post err:", err)
		return nil, common.StoreError("errors.post.save", "could not save post", err)
	}
	return post, nil
}

// UpdatePost replaces every field of post id. An empty image keeps the
// stored reference.
func (s *PostService) UpdatePost(id int, form *PostForm, image string) (*model.Post, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	post, err := s.GetPost(id)
	if err != nil {
		return nil, err
	}
	post.Title = form.Title
	post.Author = form.Author
	post.Content = form.Content
	if image != "" {
		post.Image = image
	}

	db := database.GetDB()
	if err := db.Save(post).Error; err != nil {
		logger.Warning("update post err:", err)
		return nil, common.StoreError("errors.post.save", "could not update post", err)
	}
	return post, nil
}

func (s *PostService) DelPost(id int) error {
	db := database.GetDB()
	res := db.Delete(&model.Post{}, id)
	if res.Error != nil {
		logger.Warning("delete post err:", res.Error)
		return common.StoreError("errors.post.delete", "could not delete post", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.NotFoundError("errors.post.notFound", "post not found")
	}
	return nil
}
