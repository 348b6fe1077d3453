package handlers

import (
	"github.com/JesseBremer/journal-mate/internal/auth"
	"github.com/JesseBremer/journal-mate/internal/journal"
)

// Server carries the dependencies of the HTTP handlers.
type Server struct {
	credentials *auth.Credentials
	sessions    *auth.Sessions
	journal     *journal.Service
	cookie      CookieConfig
}

type CookieConfig struct {
	Name   string
	Secure bool
}

func NewServer(credentials *auth.Credentials, sessions *auth.Sessions, journalSvc *journal.Service, cookie CookieConfig) *Server {
	return &Server{
		credentials: credentials,
		sessions:    sessions,
		journal:     journalSvc,
		cookie:      cookie,
	}
}

func (s *Server) Sessions() *auth.Sessions {
	return s.sessions
}

func (s *Server) CookieName() string {
	return s.cookie.Name
}
