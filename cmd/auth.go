package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/agentkit/internal/agents"
	"github.com/desertthunder/agentkit/internal/server"
	"github.com/desertthunder/agentkit/internal/services"
	"github.com/desertthunder/agentkit/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const authTimeout = 2 * time.Minute

// GmailAuth performs the OAuth2 authorization flow for Gmail and saves the token file.
func (r *Runner) GmailAuth(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.gmailService()
	if err != nil {
		return err
	}
	return r.authorize(ctx, svc, r.config.Gmail.TokenFile, services.GmailScopes)
}

// SpotifyAuth performs the OAuth2 authorization flow for Spotify and saves the token file.
func (r *Runner) SpotifyAuth(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.spotifyService()
	if err != nil {
		return err
	}
	return r.authorize(ctx, svc, r.config.Spotify.TokenFile, services.SpotifyScopes)
}

func (r *Runner) authorize(ctx context.Context, svc services.OAuthService, tokenFile string, scopes []string) error {
	token, err := r.doOAuth(ctx, svc)
	if err != nil {
		return err
	}

	if err := services.NewSession(tokenFile, token, scopes).Save(); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	r.logger.Info("token saved", "provider", svc.Name(), "path", tokenFile)
	return r.writePlain("%s\n", r.palette.Check(true, svc.Name()+" authentication successful"))
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, oauthSrv services.OAuthService) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := oauthSrv.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(oauthSrv.Name(), oauthSrv.GetOAuthConfig(), state)
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(oauthHandler)

	httpServer := server.New(r.config.Server.Addr(), router)

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth server for %s at %v", oauthSrv.Name(), httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for %s authorization...\n", oauthSrv.Name())
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("%s", r.palette.Warn("⚠ Could not open browser automatically."))
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(authTimeout)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}

func (r *Runner) serviceOptions() []services.Option {
	return []services.Option{services.WithHTTPClient(r.httpClient), services.WithLogger(r.logger)}
}

func (r *Runner) gmailService() (*services.GmailService, error) {
	redirectURL := "http://" + r.config.Server.Addr() + "/callback"
	cfg, err := services.LoadClientSecrets(r.config.Gmail.CredentialsFile, redirectURL, services.GmailScopes)
	if err != nil {
		return nil, err
	}
	return services.NewGmailService(cfg, r.serviceOptions()...), nil
}

func (r *Runner) spotifyService() (*services.SpotifyService, error) {
	opts := append(r.serviceOptions(), services.WithRateLimit(r.config.Spotify.RateLimit))
	return services.NewSpotifyService(r.config.Spotify.Map(), opts...)
}

// authenticated loads the token file at path and hands it to authenticate.
func authenticated(ctx context.Context, name, path string, scopes []string, authenticate func(context.Context, *services.AuthSession) error) error {
	session, err := services.LoadSession(path, scopes)
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return fmt.Errorf("%w (run 'agentkit %s auth')", err, name)
		}
		return err
	}
	return authenticate(ctx, session)
}

func (r *Runner) mailAgent(ctx context.Context) (*agents.Mail, error) {
	if r.mail != nil {
		return r.mail, nil
	}

	svc, err := r.gmailService()
	if err != nil {
		return nil, err
	}
	if err := authenticated(ctx, "gmail", r.config.Gmail.TokenFile, services.GmailScopes, svc.Authenticate); err != nil {
		return nil, err
	}

	r.mail = agents.NewMail(svc, r.gen, r.logger)
	return r.mail, nil
}

func (r *Runner) workspaceAgent() (*agents.Workspace, error) {
	if r.workspace != nil {
		return r.workspace, nil
	}

	svc, err := services.NewNotionService(r.config.Notion.Token, r.serviceOptions()...)
	if err != nil {
		return nil, err
	}

	r.workspace = agents.NewWorkspace(svc, r.gen, r.logger)
	return r.workspace, nil
}

func (r *Runner) musicAgent(ctx context.Context) (*agents.Music, error) {
	if r.music != nil {
		return r.music, nil
	}

	svc, err := r.spotifyService()
	if err != nil {
		return nil, err
	}
	if err := authenticated(ctx, "spotify", r.config.Spotify.TokenFile, services.SpotifyScopes, svc.Authenticate); err != nil {
		return nil, err
	}

	r.music = agents.NewMusic(svc, r.gen, r.logger)
	return r.music, nil
}
