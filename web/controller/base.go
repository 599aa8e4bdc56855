// Package controller provides the HTTP handlers of the blog: public pages,
// account routes and the logged-in post management routes.
package controller

import (
	"net/http"

	"github.com/miniblog/miniblog/database/model"
	"github.com/miniblog/miniblog/logger"
	"github.com/miniblog/miniblog/web/locale"
	"github.com/miniblog/miniblog/web/service"
	"github.com/miniblog/miniblog/web/session"

	"github.com/gin-gonic/gin"
)

// authedHandler is a handler that runs only for logged-in callers and gets
// their identity as an argument.
type authedHandler func(c *gin.Context, id *session.Identity)

// BaseController provides common functionality for all controllers, including authentication checks.
type BaseController struct{}

// authed resolves the session identity once and hands it to h. Anonymous
// callers are sent to the login page.
func (a *BaseController) authed(h authedHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := session.GetLoginUser(c)
		if id == nil {
			logger.Debugf("anonymous request to %s redirected to login", c.Request.URL.Path)
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		h(c, id)
	}
}

// loadPost returns the post named by the :id route parameter.
func (a *BaseController) loadPost(c *gin.Context) (*model.Post, error) {
	id, err := postID(c)
	if err != nil {
		return nil, err
	}
	var postService service.PostService
	return postService.GetPost(id)
}

// I18nWeb retrieves an internationalized message for the current request's locale.
func I18nWeb(c *gin.Context, name string, params ...string) string {
	return locale.I18n(locale.FromContext(c), name, params...)
}
