// Package server exposes an emulated environment over websockets. Each
// connection owns one adapter and exchanges JSON Request/Response messages.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexunderch/PufferLib/emulation"
	"github.com/alexunderch/PufferLib/envs"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Options configures a Server.
type Options struct {
	EnvName    string
	EnvOptions envs.Options
	Teams      emulation.Teams
	Validate   bool
	// SpaceSeed seeds the sample each session infers its featurized
	// observation schema from, so every session derives the same layout as
	// the CLI and rollout workers.
	SpaceSeed int64
	// Secret enables HS256 bearer authentication when non-empty.
	Secret []byte
	Logger *logrus.Entry
}

// Server serves one environment type.
type Server struct {
	opts Options
	log  *logrus.Entry
	mux  *http.ServeMux
}

// New checks that opts.EnvName is known and returns a Server.
func New(opts Options) (*Server, error) {
	if envs.IsParallel(opts.EnvName) {
		if _, err := envs.ParallelCreator(opts.EnvName, opts.EnvOptions); err != nil {
			return nil, err
		}
	} else if _, err := envs.SingleCreator(opts.EnvName, opts.EnvOptions); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Server{opts: opts, log: log.WithField("env_name", opts.EnvName), mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s.mux.HandleFunc("GET /ws", s.handleWS)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.WithField("addr", addr).Info("Listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	log := s.log.WithField("conn_id", uuid.New())
	if len(s.opts.Secret) > 0 {
		subject, err := authenticate(r, s.opts.Secret)
		if err != nil {
			log.WithError(err).Warn("Rejected connection")
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		log = log.WithField("subject", subject)
	}

	sess, err := s.newSession(log)
	if err != nil {
		log.WithError(err).Error("Failed to create session")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer sess.close()

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("Websocket accept failed")
		return
	}
	defer conn.CloseNow()
	log.Info("Session opened")

	if err := s.serve(r.Context(), conn, sess); err != nil {
		log.WithError(err).Warn("Session ended")
		return
	}
	log.Info("Session closed")
	conn.Close(websocket.StatusNormalClosure, "")
}

// serve answers requests until the client closes the connection.
func (s *Server) serve(ctx context.Context, conn *websocket.Conn, sess session) error {
	for {
		var req Request
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if err := wsjson.Write(ctx, conn, s.dispatch(sess, req)); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
}
