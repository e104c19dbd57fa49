package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/fleetgrid/fleetd/internal/adapters/persistence"
	"github.com/fleetgrid/fleetd/internal/domain/container"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
)

// Supervisor is the subset of *supervisor.Supervisor the socket server
// drives; declared locally to avoid a socket<->supervisor import coupling
// beyond this narrow contract.
type Supervisor interface {
	Start(ctx context.Context, playerID int, token string, t container.Type, maxIterations int, metadata map[string]interface{}) (string, error)
	StopContainer(containerID string) error
	ActiveContainers() map[string]*container.Container
}

// LogReader is the read side of the container log store.
type LogReader interface {
	List(ctx context.Context, containerID string, playerID int, level *string, since *time.Time, limit, offset int) ([]persistence.ContainerLogEntry, error)
}

// TokenProvider resolves a player's current API bearer token, needed to
// launch a workflow on their behalf.
type TokenProvider func(playerID int) (string, error)

// Server is the daemon's local-socket RPC endpoint: one listener, one
// goroutine per accepted connection, forwarding every framed request to
// the matching handler.
type Server struct {
	path       string
	listener   net.Listener
	supervisor Supervisor
	containers container.Repository
	logs       LogReader
	tokenFor   TokenProvider
	version    string
	startedAt  time.Time
	logger     *log.Logger

	wg sync.WaitGroup
}

func NewServer(path string, sup Supervisor, containers container.Repository, logs LogReader, tokenFor TokenProvider, version string, logger *log.Logger) (*Server, error) {
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		ln.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}
	return &Server{
		path:       path,
		listener:   ln,
		supervisor: sup,
		containers: containers,
		logs:       logs,
		tokenFor:   tokenFor,
		version:    version,
		startedAt:  time.Now().UTC(),
		logger:     logger,
	}, nil
}

// Serve accepts connections until ctx is cancelled or the listener is closed.
func (s *Server) Serve(ctx context.Context) {
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Printf("socket: accept failed: %v", err)
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

// Close unlinks the socket file and waits for in-flight connections to
// finish, as the final step of graceful shutdown.
func (s *Server) Close() {
	s.listener.Close()
	s.wg.Wait()
	os.RemoveAll(s.path)
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	for {
		req, err := readFrame(conn)
		if err != nil {
			return
		}
		resp := s.dispatch(ctx, req)
		if err := writeFrame(conn, resp); err != nil {
			s.logger.Printf("socket: write failed: %v", err)
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, req *Envelope) *Envelope {
	switch req.Op {
	case "Health":
		return s.handleHealth()
	case "ListContainers":
		return s.handleListContainers(ctx, req)
	case "GetContainer":
		return s.handleGetContainer(ctx, req)
	case "StopContainer":
		return s.handleStopContainer(ctx, req)
	case "GetContainerLogs":
		return s.handleGetContainerLogs(ctx, req)
	case "RegisterContainer":
		return s.handleRegisterContainer(ctx, req)
	default:
		return errEnvelope(req.Op, fmt.Sprintf("unknown op %q", req.Op))
	}
}

func errEnvelope(op, message string) *Envelope {
	return &Envelope{Op: op, Error: message}
}

func okEnvelope(op string, payload interface{}) *Envelope {
	body, err := json.Marshal(payload)
	if err != nil {
		return errEnvelope(op, "encode response: "+err.Error())
	}
	return &Envelope{Op: op, Payload: body}
}

func (s *Server) handleHealth() *Envelope {
	return okEnvelope("Health", HealthResponse{
		Version:          s.version,
		ActiveContainers: len(s.supervisor.ActiveContainers()),
		UptimeSeconds:    int64(time.Since(s.startedAt).Seconds()),
	})
}

func summarize(c *container.Container) ContainerSummary {
	lastErr := ""
	if c.LastError() != nil {
		lastErr = c.LastError().Error()
	}
	return ContainerSummary{
		ID:               c.ID(),
		Type:             string(c.Type()),
		PlayerID:         c.PlayerID(),
		Status:           string(c.Status()),
		CurrentIteration: c.CurrentIteration(),
		MaxIterations:    c.MaxIterations(),
		RestartCount:     c.RestartCount(),
		MaxRestarts:      c.MaxRestarts(),
		Metadata:         c.Metadata(),
		CreatedAt:        c.CreatedAt(),
		StartedAt:        c.StartedAt(),
		StoppedAt:        c.StoppedAt(),
		LastError:        lastErr,
	}
}

func (s *Server) handleListContainers(ctx context.Context, req *Envelope) *Envelope {
	var r ListContainersRequest
	if err := json.Unmarshal(req.Payload, &r); err != nil {
		return errEnvelope(req.Op, "decode request: "+err.Error())
	}

	var out []ContainerSummary
	if r.Status != "" {
		cs, err := s.containers.ListByStatus(ctx, r.PlayerID, container.ContainerStatus(r.Status))
		if err != nil {
			return errEnvelope(req.Op, err.Error())
		}
		for _, c := range cs {
			if r.Type != "" && string(c.Type()) != r.Type {
				continue
			}
			out = append(out, summarize(c))
		}
	} else {
		for _, c := range s.supervisor.ActiveContainers() {
			if r.PlayerID != 0 && c.PlayerID() != r.PlayerID {
				continue
			}
			if r.Type != "" && string(c.Type()) != r.Type {
				continue
			}
			out = append(out, summarize(c))
		}
	}
	return okEnvelope(req.Op, ListContainersResponse{Containers: out})
}

func (s *Server) handleGetContainer(ctx context.Context, req *Envelope) *Envelope {
	var r GetContainerRequest
	if err := json.Unmarshal(req.Payload, &r); err != nil {
		return errEnvelope(req.Op, "decode request: "+err.Error())
	}
	c, err := s.containers.FindByID(ctx, r.PlayerID, r.ContainerID)
	if err != nil {
		return errEnvelope(req.Op, err.Error())
	}
	return okEnvelope(req.Op, GetContainerResponse{Container: summarize(c)})
}

func (s *Server) handleStopContainer(ctx context.Context, req *Envelope) *Envelope {
	var r StopContainerRequest
	if err := json.Unmarshal(req.Payload, &r); err != nil {
		return errEnvelope(req.Op, "decode request: "+err.Error())
	}
	if err := s.supervisor.StopContainer(r.ContainerID); err != nil {
		return errEnvelope(req.Op, err.Error())
	}
	return okEnvelope(req.Op, StopContainerResponse{Acknowledged: true})
}

func (s *Server) handleGetContainerLogs(ctx context.Context, req *Envelope) *Envelope {
	var r GetContainerLogsRequest
	if err := json.Unmarshal(req.Payload, &r); err != nil {
		return errEnvelope(req.Op, "decode request: "+err.Error())
	}
	limit := r.Limit
	if limit <= 0 {
		limit = 100
	}
	var level *string
	if r.Level != "" {
		level = &r.Level
	}
	rows, err := s.logs.List(ctx, r.ContainerID, r.PlayerID, level, r.Since, limit, r.Offset)
	if err != nil {
		return errEnvelope(req.Op, err.Error())
	}
	entries := make([]LogEntry, len(rows))
	for i, row := range rows {
		entries[i] = LogEntry{Level: row.Level, Message: row.Message, Timestamp: row.Timestamp}
	}
	return okEnvelope(req.Op, GetContainerLogsResponse{Entries: entries})
}

func (s *Server) handleRegisterContainer(ctx context.Context, req *Envelope) *Envelope {
	var r RegisterContainerRequest
	if err := json.Unmarshal(req.Payload, &r); err != nil {
		return errEnvelope(req.Op, "decode request: "+err.Error())
	}
	t := container.Type(r.Type)
	if !t.Valid() {
		return errEnvelope(req.Op, fmt.Sprintf("unknown container type %q", r.Type))
	}
	token, err := s.tokenFor(r.PlayerID)
	if err != nil {
		return errEnvelope(req.Op, err.Error())
	}
	maxIter := r.MaxIterations
	if maxIter == 0 {
		maxIter = -1
	}
	id, err := s.supervisor.Start(ctx, r.PlayerID, token, t, maxIter, r.Metadata)
	if err != nil {
		if se, ok := err.(*shared.Error); ok {
			return errEnvelope(req.Op, se.Error())
		}
		return errEnvelope(req.Op, err.Error())
	}
	return okEnvelope(req.Op, RegisterContainerResponse{ContainerID: id})
}
