// Package tls serves the API over HTTPS with certificates managed by
// CertMagic and obtained through Azure DNS-01 challenges.
package tls

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/caddyserver/certmagic"
	"github.com/libdns/azure"

	"github.com/jobrunner/meridian/internal/config"
	"github.com/jobrunner/meridian/internal/domain"
)

// Server wraps an HTTP server with automatic TLS.
type Server struct {
	config    config.TLSConfig
	handler   http.Handler
	logger    *slog.Logger
	tlsConfig *tls.Config
	timeouts  config.ServerConfig

	mu     sync.Mutex
	server *http.Server
}

// validate checks the settings an ACME account needs.
func validate(cfg config.TLSConfig) error {
	if len(cfg.Domains) == 0 {
		return &domain.ConfigError{Field: "tls.domains", Message: "TLS enabled but no domains specified"}
	}
	if cfg.Email == "" {
		return &domain.ConfigError{Field: "tls.email", Message: "TLS enabled but no email specified"}
	}
	if cfg.DNS.SubscriptionID == "" || cfg.DNS.ResourceGroupName == "" {
		return &domain.ConfigError{Field: "tls.dns", Message: "DNS-01 challenges need subscription_id and resource_group_name"}
	}
	return nil
}

// NewServer creates a server for handler. With TLS disabled it serves
// plain HTTP. srv supplies the read and write timeouts.
func NewServer(cfg config.TLSConfig, srv config.ServerConfig, handler http.Handler, logger *slog.Logger) (*Server, error) {
	s := &Server{
		config:   cfg,
		handler:  handler,
		logger:   logger,
		timeouts: srv,
	}
	if !cfg.Enabled {
		return s, nil
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	certmagic.DefaultACME.Agreed = true
	certmagic.DefaultACME.Email = cfg.Email

	if cfg.Staging {
		certmagic.DefaultACME.CA = certmagic.LetsEncryptStagingCA
	}

	if cfg.CacheDir != "" {
		certmagic.Default.Storage = &certmagic.FileStorage{Path: cfg.CacheDir}
	}

	provider := &azure.Provider{
		SubscriptionId:    cfg.DNS.SubscriptionID,
		ResourceGroupName: cfg.DNS.ResourceGroupName,
		ClientId:          cfg.DNS.ClientID, // Empty = System Assigned Managed Identity
	}
	certmagic.DefaultACME.DNS01Solver = &certmagic.DNS01Solver{
		DNSManager: certmagic.DNSManager{
			DNSProvider: provider,
		},
	}

	tlsConfig, err := certmagic.TLS(cfg.Domains)
	if err != nil {
		return nil, &domain.ConfigError{Field: "tls", Message: "configuring certificates: " + err.Error()}
	}
	s.tlsConfig = tlsConfig
	return s, nil
}

// ListenAndServe starts the server with TLS if enabled. It returns nil
// after Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		TLSConfig:         s.tlsConfig,
		ReadTimeout:       s.timeouts.ReadTimeout,
		WriteTimeout:      s.timeouts.WriteTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.server = server
	s.mu.Unlock()

	var err error
	if s.config.Enabled {
		s.logger.Info("starting HTTPS server with DNS-01 challenge",
			"address", addr,
			"domains", s.config.Domains,
		)
		err = server.ListenAndServeTLS("", "")
	} else {
		s.logger.Info("starting HTTP server (TLS disabled)", "address", addr)
		err = server.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops a running server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.mu.Unlock()
	if server == nil {
		return nil
	}
	s.logger.Info("shutting down server")
	return server.Shutdown(ctx)
}

// TLSConfig returns the TLS configuration, nil when TLS is disabled.
func (s *Server) TLSConfig() *tls.Config {
	return s.tlsConfig
}

// ManageCertificates pre-obtains certificates for the configured domains.
func (s *Server) ManageCertificates(ctx context.Context) error {
	if !s.config.Enabled {
		return nil
	}

	s.logger.Info("obtaining certificates", "domains", s.config.Domains)

	if err := certmagic.ManageSync(ctx, s.config.Domains); err != nil {
		return &domain.StorageError{Operation: "certificates", Key: s.config.Domains[0], Err: err}
	}

	s.logger.Info("certificates obtained successfully")
	return nil
}
