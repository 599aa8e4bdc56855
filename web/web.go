// Package web provides the blog's web server: routing, middleware, templates,
// static assets and the uploaded images.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/miniblog/miniblog/config"
	"github.com/miniblog/miniblog/logger"
	"github.com/miniblog/miniblog/util/common"
	"github.com/miniblog/miniblog/web/controller"
	"github.com/miniblog/miniblog/web/locale"
	"github.com/miniblog/miniblog/web/middleware"
	"github.com/miniblog/miniblog/web/service"
	"github.com/miniblog/miniblog/web/session"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

//go:embed assets
var assetsFS embed.FS

//go:embed html/*
var htmlFS embed.FS

//go:embed translation/*
var i18nFS embed.FS

var startTime = time.Now()

type wrapAssetsFS struct {
	embed.FS
}

func (f *wrapAssetsFS) Open(name string) (fs.File, error) {
	file, err := f.FS.Open("assets/" + name)
	if err != nil {
		return nil, err
	}
	return &wrapAssetsFile{File: file}, nil
}

type wrapAssetsFile struct {
	fs.File
}

func (f *wrapAssetsFile) Stat() (fs.FileInfo, error) {
	info, err := f.File.Stat()
	if err != nil {
		return nil, err
	}
	return &wrapAssetsFileInfo{FileInfo: info}, nil
}

type wrapAssetsFileInfo struct {
	fs.FileInfo
}

func (f *wrapAssetsFileInfo) ModTime() time.Time {
	return startTime
}

// Server represents the blog's web server with its controllers and services.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	index  *controller.IndexController
	member *controller.MemberController

	settingService service.SettingService
	uploadService  *service.UploadService

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new web server instance storing uploads in the
// configured upload folder.
func NewServer() *Server {
	return newServer(config.GetUploadFolder())
}

func newServer(uploadDir string) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		uploadService: service.NewUploadService(uploadDir),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// getHtmlFiles walks the local `web/html` directory and returns a list of
// template file paths. Used only in debug/development mode.
func (s *Server) getHtmlFiles() ([]string, error) {
	files := make([]string, 0)
	dir, _ := os.Getwd()
	err := fs.WalkDir(os.DirFS(dir), "web/html", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// getHtmlTemplate parses embedded HTML templates from the bundled `htmlFS`.
// Each page is addressed by its base name.
func (s *Server) getHtmlTemplate(funcMap template.FuncMap) (*template.Template, error) {
	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(htmlFS, "html", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			newT, err := t.ParseFS(htmlFS, path+"/*.html")
			if err != nil {
				// ignore folders without matches
				return nil
			}
			t = newT
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// initRouter initializes Gin, registers middleware, templates, static assets,
// controllers and returns the configured engine.
func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	if err := locale.InitLocalizer(i18nFS); err != nil {
		return nil, err
	}

	secret, err := s.settingService.GetSecret()
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestIDMiddleware(), middleware.AccessLogMiddleware())
	engine.Use(gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/static/"}),
	))
	engine.Use(session.Middleware(secret))
	engine.Use(locale.LocalizerMiddleware())

	funcMap := template.FuncMap{"i18n": locale.I18n}
	engine.SetFuncMap(funcMap)

	// Static files & templates
	if config.IsDebug() {
		files, err := s.getHtmlFiles()
		if err != nil {
			return nil, err
		}
		engine.LoadHTMLFiles(files...)
		engine.StaticFS("/assets", http.FS(os.DirFS("web/assets")))
	} else {
		tpl, err := s.getHtmlTemplate(funcMap)
		if err != nil {
			return nil, err
		}
		engine.SetHTMLTemplate(tpl)
		engine.StaticFS("/assets", http.FS(&wrapAssetsFS{FS: assetsFS}))
	}
	engine.Static("/static/imgs", s.uploadService.Dir)

	g := engine.Group("/")
	s.index = controller.NewIndexController(g)
	s.member = controller.NewMemberController(g, s.uploadService)

	// 404 handler
	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(config.GetListen(), strconv.Itoa(config.GetPort()))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	logger.Info("Web server running HTTP on", listener.Addr())

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("web server stopped:", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the web server.
func (s *Server) Stop() error {
	var err1, err2 error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
		err1 = s.httpServer.Shutdown(ctx)
		cancel()
	}
	s.cancel()
	if s.listener != nil {
		err2 = s.listener.Close()
		if errors.Is(err2, net.ErrClosed) {
			err2 = nil
		}
	}
	return common.Combine(err1, err2)
}
