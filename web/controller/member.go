package controller

import (
	"errors"
	"net/http"

	"github.com/miniblog/miniblog/logger"
	"github.com/miniblog/miniblog/util/common"
	"github.com/miniblog/miniblog/web/service"
	"github.com/miniblog/miniblog/web/session"

	"github.com/gin-gonic/gin"
)

// MemberController handles the post management routes. Every route requires
// a logged-in session.
type MemberController struct {
	BaseController

	postService   service.PostService
	uploadService *service.UploadService
}

// NewMemberController creates a new MemberController storing images in uploads.
func NewMemberController(g *gin.RouterGroup, uploads *service.UploadService) *MemberController {
	a := &MemberController{uploadService: uploads}
	a.initRouter(g)
	return a
}

func (a *MemberController) initRouter(g *gin.RouterGroup) {
	g.GET("/member", a.authed(a.member))

	g.GET("/post/create", a.authed(a.createPage))
	g.POST("/post/create", a.authed(a.create))

	g.GET("/post/edit/:id", a.authed(a.editPage))
	g.POST("/post/edit/:id", a.authed(a.edit))

	g.GET("/post/delete/:id", a.authed(a.delete))
}

func (a *MemberController) member(c *gin.Context, _ *session.Identity) {
	posts, err := a.postService.GetPosts()
	if err != nil {
		errorPage(c, err)
		return
	}
	html(c, http.StatusOK, "member.html", "pages.member.title", gin.H{"posts": posts})
}

func (a *MemberController) createPage(c *gin.Context, _ *session.Identity) {
	html(c, http.StatusOK, "create.html", "pages.post.createTitle", nil)
}

// create validates the form before touching the upload folder, so a rejected
// form never leaves a file behind.
func (a *MemberController) create(c *gin.Context, id *session.Identity) {
	form := &service.PostForm{}
	if err := c.ShouldBind(form); err != nil {
		formError(c, "create.html", "pages.post.createTitle", errInvalidForm, gin.H{"post": form})
		return
	}
	if err := form.Validate(); err != nil {
		formError(c, "create.html", "pages.post.createTitle", err, gin.H{"post": form})
		return
	}

	// a body without a file part is reported as "no file selected"
	fh, _ := c.FormFile("file")
	image, err := a.uploadService.Save(fh)
	if err != nil {
		formError(c, "create.html", "pages.post.createTitle", err, gin.H{"post": form})
		return
	}

	post, err := a.postService.AddPost(form, image)
	if err != nil {
		formError(c, "create.html", "pages.post.createTitle", err, gin.H{"post": form})
		return
	}
	logger.Infof("%s created post %d", id.Username, post.Id)
	c.Redirect(http.StatusSeeOther, "/")
}

func (a *MemberController) editPage(c *gin.Context, _ *session.Identity) {
	post, err := a.loadPost(c)
	if err != nil {
		errorPage(c, err)
		return
	}
	html(c, http.StatusOK, "edit.html", "pages.post.editTitle", gin.H{"post": post})
}

// edit replaces the text fields and, when a file is attached, the image.
// The old_image field sent by the form is ignored; the stored reference wins.
func (a *MemberController) edit(c *gin.Context, id *session.Identity) {
	post, err := a.loadPost(c)
	if err != nil {
		errorPage(c, err)
		return
	}

	form := &service.PostForm{}
	if err := c.ShouldBind(form); err != nil {
		formError(c, "edit.html", "pages.post.editTitle", errInvalidForm, gin.H{"post": post})
		return
	}
	post.Title, post.Author, post.Content = form.Title, form.Author, form.Content
	if err := form.Validate(); err != nil {
		formError(c, "edit.html", "pages.post.editTitle", err, gin.H{"post": post})
		return
	}

	image := ""
	fh, err := c.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		formError(c, "edit.html", "pages.post.editTitle", common.ValidationError("errors.upload.failed", "file upload error"), gin.H{"post": post})
		return
	default:
		image, err = a.uploadService.Save(fh)
		if err != nil {
			formError(c, "edit.html", "pages.post.editTitle", err, gin.H{"post": post})
			return
		}
	}

	if _, err := a.postService.UpdatePost(post.Id, form, image); err != nil {
		formError(c, "edit.html", "pages.post.editTitle", err, gin.H{"post": post})
		return
	}
	logger.Infof("%s updated post %d", id.Username, post.Id)
	c.Redirect(http.StatusSeeOther, "/member")
}

func (a *MemberController) delete(c *gin.Context, id *session.Identity) {
	postId, err := postID(c)
	if err == nil {
		err = a.postService.DelPost(postId)
	}
	if err != nil {
		errorPage(c, err)
		return
	}
	logger.Infof("%s deleted post %d", id.Username, postId)
	c.Redirect(http.StatusFound, "/member")
}
