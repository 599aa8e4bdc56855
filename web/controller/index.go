package controller

import (
	"net/http"
	"strings"

	"github.com/miniblog/miniblog/logger"
	"github.com/miniblog/miniblog/util/common"
	"github.com/miniblog/miniblog/web/service"
	"github.com/miniblog/miniblog/web/session"

	"github.com/gin-gonic/gin"
)

// LoginForm represents the login request structure.
type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// RegisterForm represents the registration request structure.
type RegisterForm struct {
	Name     string `form:"name"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

// IndexController handles the public pages and the account routes.
type IndexController struct {
	BaseController

	settingService service.SettingService
	userService    service.UserService
	postService    service.PostService
}

// NewIndexController creates a new IndexController and initializes its routes.
func NewIndexController(g *gin.RouterGroup) *IndexController {
	a := &IndexController{}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET("/", a.index)
	g.GET("/post/detail/:id", a.detail)

	g.GET("/login", a.loginPage)
	g.POST("/login", a.login)
	g.GET("/logout", a.logout)

	g.GET("/register", a.registerPage)
	g.POST("/register", a.register)
}

// index lists every post, oldest first.
func (a *IndexController) index(c *gin.Context) {
	posts, err := a.postService.GetPosts()
	if err != nil {
		errorPage(c, err)
		return
	}
	html(c, http.StatusOK, "index.html", "pages.index.title", gin.H{"posts": posts})
}

func (a *IndexController) detail(c *gin.Context) {
	post, err := a.loadPost(c)
	if err == nil {
		html(c, http.StatusOK, "detail.html", "pages.detail.title", gin.H{"post": post})
		return
	}
	if errorStatus(err) == http.StatusNotFound {
		html(c, http.StatusNotFound, "detail.html", "pages.detail.title", gin.H{"post": nil})
		return
	}
	errorPage(c, err)
}

func (a *IndexController) loginPage(c *gin.Context) {
	if session.IsLogin(c) {
		c.Redirect(http.StatusFound, "/member")
		return
	}
	html(c, http.StatusOK, "login.html", "pages.login.title", nil)
}

// login checks the credentials and binds the user to the session.
func (a *IndexController) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		formError(c, "login.html", "pages.login.title", errInvalidForm, nil)
		return
	}
	if strings.TrimSpace(form.Email) == "" || form.Password == "" {
		formError(c, "login.html", "pages.login.title",
			common.ValidationError("errors.login.required", "email and password are required"),
			gin.H{"email": form.Email})
		return
	}

	user, err := a.userService.CheckUser(form.Email, form.Password)
	if err != nil {
		logger.Warningf("wrong email: %q, IP: %q", form.Email, getRemoteIp(c))
		formError(c, "login.html", "pages.login.title", err, gin.H{"email": form.Email})
		return
	}

	sessionMaxAge, err := a.settingService.GetSessionMaxAge()
	if err != nil {
		logger.Warning("Unable to get session's max age from DB")
	}
	id := session.Identity{Username: user.Username, Email: user.Email}
	if err := session.SetLoginUser(c, id, sessionMaxAge*60, "pages.member.welcome"); err != nil {
		logger.Warning("Unable to save session: ", err)
		errorPage(c, err)
		return
	}

	logger.Infof("%s logged in successfully, Ip Address: %s", user.Username, getRemoteIp(c))
	c.Redirect(http.StatusSeeOther, "/member")
}

// logout handles user logout by clearing the session and redirecting to the login page.
func (a *IndexController) logout(c *gin.Context) {
	user := session.GetLoginUser(c)
	if user != nil {
		logger.Infof("%s logged out successfully", user.Username)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("Unable to save session after clearing:", err)
	}
	c.Redirect(http.StatusFound, "/login")
}

func (a *IndexController) registerPage(c *gin.Context) {
	html(c, http.StatusOK, "register.html", "pages.register.title", nil)
}

func (a *IndexController) register(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		formError(c, "register.html", "pages.register.title", errInvalidForm, nil)
		return
	}

	user, err := a.userService.Register(form.Name, form.Email, form.Password)
	if err != nil {
		formError(c, "register.html", "pages.register.title", err, gin.H{
			"name_value": form.Name,
			"email":      form.Email,
		})
		return
	}

	logger.Noticef("registered user %s", user.Username)
	c.Redirect(http.StatusSeeOther, "/")
}
