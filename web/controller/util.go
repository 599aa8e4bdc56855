package controller

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/miniblog/miniblog/config"
	"github.com/miniblog/miniblog/logger"
	"github.com/miniblog/miniblog/util/common"
	"github.com/miniblog/miniblog/web/locale"
	"github.com/miniblog/miniblog/web/session"

	"github.com/gin-gonic/gin"
)

var errInvalidForm = common.ValidationError("errors.form.invalid", "invalid form data")

// getRemoteIp extracts the real IP address from the request headers or remote address.
func getRemoteIp(c *gin.Context) string {
	value := c.GetHeader("X-Real-IP")
	if value != "" {
		return value
	}
	value = c.GetHeader("X-Forwarded-For")
	if value != "" {
		ips := strings.Split(value, ",")
		return strings.TrimSpace(ips[0])
	}
	addr := c.Request.RemoteAddr
	ip, _, _ := net.SplitHostPort(addr)
	return ip
}

// html renders an HTML template with the provided data and title key.
func html(c *gin.Context, status int, name string, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["title"] = title
	data["loc"] = locale.FromContext(c)
	data["identity"] = session.GetLoginUser(c)
	data["flashes"] = session.Flashes(c)
	c.HTML(status, name, getContext(data))
}

// getContext adds version and other context data to the provided gin.H.
func getContext(h gin.H) gin.H {
	a := gin.H{
		"name":    config.GetName(),
		"cur_ver": config.GetVersion(),
	}
	for key, value := range h {
		a[key] = value
	}
	return a
}

// errorStatus maps an error kind onto the HTTP status of the rejected request.
func errorStatus(err error) int {
	switch common.KindOf(err) {
	case common.KindValidation:
		return http.StatusBadRequest
	case common.KindNotFound:
		return http.StatusNotFound
	case common.KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func errorTitle(err error) string {
	switch common.KindOf(err) {
	case common.KindValidation:
		return "errors.validation"
	case common.KindNotFound:
		return "errors.notFound"
	case common.KindAuth:
		return "errors.auth"
	case common.KindStore:
		return "errors.store"
	}
	return "errors.unknown"
}

// formError re-renders page with err shown inline. data keeps what the user typed.
func formError(c *gin.Context, page, title string, err error, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Warningf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	data["error"] = errorMessage(c, err)
	html(c, status, page, title, data)
}

// errorPage renders the generic error page for err.
func errorPage(c *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Warningf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	html(c, status, "error.html", errorTitle(err), gin.H{
		"error": errorMessage(c, err),
	})
}

// errorMessage translates err for the caller's locale. Errors without a
// message id get the generic text of their kind.
func errorMessage(c *gin.Context, err error) string {
	if id, params, ok := common.MessageID(err); ok {
		return I18nWeb(c, id, params...)
	}
	return I18nWeb(c, errorTitle(err))
}

// postID parses the :id route parameter. Anything that is not a positive
// integer cannot name a post.
func postID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, common.NotFoundError("errors.post.notFound", "post not found")
	}
	return id, nil
}
