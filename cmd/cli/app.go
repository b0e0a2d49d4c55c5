package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"example.com/volunteer/internal/config"
	"example.com/volunteer/internal/domain"
	"example.com/volunteer/internal/identity"
	"example.com/volunteer/internal/localstore"
	"example.com/volunteer/internal/remote"
	"example.com/volunteer/internal/session"
)

// base holds the pieces every command needs, session or not.
type base struct {
	cfg    *config.Config
	store  *localstore.Store
	guard  *session.Guard
	logger *log.Logger
}

func newBase() (*base, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	store, err := localstore.New(cfg.StateDir)
	if err != nil {
		return nil, err
	}
	return &base{
		cfg:    cfg,
		store:  store,
		guard:  session.NewGuard(store),
		logger: log.New(log.Writer(), "[cli] ", log.LstdFlags),
	}, nil
}

// remoteFailure records the structured error and hands the user the
// generic message. Status codes and response bodies stay in the log.
func (b *base) remoteFailure(message string, err error) error {
	b.logger.Printf("%s: %v", message, err)
	return errors.New(message)
}

func (b *base) identityClient() *identity.Client {
	return identity.NewClient(identity.Config{
		BaseURL: b.cfg.BackendURL,
		APIKey:  b.cfg.BackendAPIKey,
	})
}

// app is the signed-in runtime: remote client, domain service, and the
// background write-back worker.
type app struct {
	*base
	session *identity.Session
	client  *remote.Client
	service *domain.Service
	syncer  *domain.Syncer
	cancel  context.CancelFunc
}

// newApp requires a cached session and a reachable catalog. Commands
// that mutate or display state go through here; without a catalog the
// joined set cannot be resolved, so the command aborts.
func newApp(ctx context.Context) (*app, error) {
	b, err := newBase()
	if err != nil {
		return nil, err
	}

	sess, err := b.guard.Require()
	if err != nil {
		return nil, fmt.Errorf("not signed in, run `volunteer login` first")
	}

	client := remote.NewClient(remote.Config{
		BaseURL:         b.cfg.BackendURL,
		APIKey:          b.cfg.BackendAPIKey,
		AccessToken:     sess.AccessToken,
		ActivitiesTable: b.cfg.ActivitiesTable,
		VolunteersTable: b.cfg.VolunteersTable,
	})

	runCtx, cancel := context.WithCancel(context.Background())
	syncer := domain.NewSyncer(client, sess.User.Email, sess.User.DisplayName())
	go syncer.Run(runCtx)

	opts := []domain.Option{}
	if b.cfg.PruneOnReload {
		opts = append(opts, domain.WithPruneOnReload())
	}
	service := domain.NewService(client, localstore.NewState(b.store), syncer, opts...)

	if err := service.Load(ctx); err != nil {
		cancel()
		syncer.Wait()
		return nil, b.remoteFailure("could not load the activity catalog, try again later", err)
	}

	return &app{
		base:    b,
		session: sess,
		client:  client,
		service: service,
		syncer:  syncer,
		cancel:  cancel,
	}, nil
}

// close drains any pending write-back before the process exits.
func (a *app) close() {
	a.cancel()
	a.syncer.Wait()
}

// requireOwner checks the remote privilege column for the signed-in
// volunteer.
func (a *app) requireOwner(ctx context.Context) error {
	privilege, err := a.client.LookupPrivilegeByEmail(ctx, a.session.User.Email)
	if err != nil {
		return a.remoteFailure("could not check privileges, try again later", err)
	}
	if privilege != domain.RankOwner {
		return fmt.Errorf("only owners can manage the activity catalog")
	}
	return nil
}
