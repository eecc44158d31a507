package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/krehermann/intcode/core"
	"github.com/krehermann/intcode/types"
	"github.com/krehermann/intcode/vm"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

var errZeroHash = errors.New("zero program hash")

type ServerConfig struct {
	ListenerAddr string
	Logger       *zap.Logger
}

// Server exposes a Registry over HTTP.
type Server struct {
	ServerConfig
	registry *core.Registry

	echo   *echo.Echo
	logger *zap.Logger
}

func NewServer(config ServerConfig, registry *core.Registry) (*Server, error) {
	if config.Logger == nil {
		config.Logger, _ = zap.NewDevelopment()
	}
	s := &Server{
		ServerConfig: config,
		registry:     registry,
		logger:       config.Logger.Named("api"),
	}
	s.echo = s.routes()

	return s, nil
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	}))

	e.POST("/programs", s.handleAddProgram)
	e.GET("/programs/:hash", s.handleGetProgram)

	e.POST("/machines", s.handleSpawn)
	e.GET("/machines/:id", s.handleGetMachine)
	e.GET("/machines/:id/code", s.handleGetCode)
	e.POST("/machines/:id/run", s.handleRun)
	e.POST("/machines/:id/drain", s.handleDrain)
	e.POST("/machines/:id/fork", s.handleFork)
	e.DELETE("/machines/:id", s.handleRemove)

	return e
}

func (s *Server) Start() error {
	s.logger.Info("api server starting",
		zap.String("addr", s.ListenerAddr))
	err := s.echo.Start(s.ListenerAddr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func errorJSON(ectx echo.Context, status int, err error) error {
	return ectx.JSON(status, ErrorResponse{Error: err.Error()})
}

// registryError maps registry errors to a status code.
func registryError(ectx echo.Context, err error) error {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return errorJSON(ectx, http.StatusNotFound, err)
	case errors.Is(err, core.ErrMachineFailed):
		return errorJSON(ectx, http.StatusConflict, err)
	case errors.Is(err, core.ErrEmptyProgram):
		return errorJSON(ectx, http.StatusBadRequest, err)
	default:
		return errorJSON(ectx, http.StatusInternalServerError, err)
	}
}

func (s *Server) handleAddProgram(ectx echo.Context) error {
	var p core.Program
	if err := core.NewProgramDecoder(ectx.Request().Body).Decode(&p); err != nil {
		return errorJSON(ectx, http.StatusBadRequest, err)
	}

	h, err := s.registry.AddProgram(p)
	if err != nil {
		return registryError(ectx, err)
	}

	return ectx.JSON(http.StatusCreated, ProgramResponse{
		Hash:   h.String(),
		Length: len(p),
	})
}

// parseHash accepts a hex program hash. The zero hash never names a
// program.
func parseHash(s string) (types.Hash, error) {
	h, err := types.HashFromHex(s)
	if err != nil {
		return h, err
	}
	if h.IsZero() {
		return h, errZeroHash
	}
	return h, nil
}

// handleGetProgram answers with JSON, or with the program text when the
// client accepts text/plain.
func (s *Server) handleGetProgram(ectx echo.Context) error {
	h, err := parseHash(ectx.Param("hash"))
	if err != nil {
		return errorJSON(ectx, http.StatusBadRequest, err)
	}

	p, err := s.registry.Program(h)
	if err != nil {
		return registryError(ectx, err)
	}

	if strings.HasPrefix(ectx.Request().Header.Get(echo.HeaderAccept), echo.MIMETextPlain) {
		ectx.Response().Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
		ectx.Response().WriteHeader(http.StatusOK)
		return core.NewProgramEncoder(ectx.Response()).Encode(p)
	}

	return ectx.JSON(http.StatusOK, ProgramResponse{
		Hash:   h.String(),
		Length: len(p),
		Code:   p,
	})
}

func (s *Server) handleSpawn(ectx echo.Context) error {
	var req SpawnRequest
	if err := ectx.Bind(&req); err != nil {
		return errorJSON(ectx, http.StatusBadRequest, err)
	}
	h, err := parseHash(req.Program)
	if err != nil {
		return errorJSON(ectx, http.StatusBadRequest, err)
	}

	snap, err := s.registry.Spawn(h)
	if err != nil {
		return registryError(ectx, err)
	}
	return ectx.JSON(http.StatusCreated, newMachineResponse(snap))
}

func machineID(ectx echo.Context) core.MachineID {
	return core.MachineID(ectx.Param("id"))
}

func (s *Server) handleGetMachine(ectx echo.Context) error {
	snap, err := s.registry.Snapshot(machineID(ectx))
	if err != nil {
		return registryError(ectx, err)
	}
	return ectx.JSON(http.StatusOK, newMachineResponse(snap))
}

func (s *Server) handleGetCode(ectx echo.Context) error {
	id := machineID(ectx)
	code, err := s.registry.Code(id)
	if err != nil {
		return registryError(ectx, err)
	}
	return ectx.JSON(http.StatusOK, CodeResponse{ID: string(id), Code: code})
}

func (s *Server) handleRun(ectx echo.Context) error {
	var req RunRequest
	if err := ectx.Bind(&req); err != nil {
		return errorJSON(ectx, http.StatusBadRequest, err)
	}
	input := req.Input
	if len(req.Lines) > 0 {
		input = append(input, vm.ASCIIInput(req.Lines...)...)
	}

	snap, err := s.registry.Run(machineID(ectx), input...)
	if err != nil {
		return registryError(ectx, err)
	}
	return ectx.JSON(http.StatusOK, newMachineResponse(snap))
}

func (s *Server) handleDrain(ectx echo.Context) error {
	id := machineID(ectx)
	out, err := s.registry.Drain(id)
	if err != nil {
		return registryError(ectx, err)
	}
	return ectx.JSON(http.StatusOK, OutputResponse{ID: string(id), Output: out})
}

func (s *Server) handleFork(ectx echo.Context) error {
	snap, err := s.registry.Fork(machineID(ectx))
	if err != nil {
		return registryError(ectx, err)
	}
	return ectx.JSON(http.StatusCreated, newMachineResponse(snap))
}

func (s *Server) handleRemove(ectx echo.Context) error {
	if err := s.registry.Remove(machineID(ectx)); err != nil {
		return registryError(ectx, err)
	}
	return ectx.NoContent(http.StatusNoContent)
}
