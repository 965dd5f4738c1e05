package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	cms "github.com/goliatone/go-cms-community"
	"github.com/goliatone/go-cms-community/commands"
	"github.com/goliatone/go-cms-community/community"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("community: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("community", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML runtime config (storage, logging, server)")
	serve := fs.Bool("serve", false, "Serve the REST API after seeding")
	addr := fs.String("addr", "", "Listen address, overrides server.addr")
	schemaOut := fs.String("schema-out", "", "GraphQL schema output file, overrides the community default")
	email := fs.String("email", community.DevUser.Email, "Email of the seeded user")
	password := fs.String("password", community.DevUser.Password, "Password of the seeded user")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := buildConfig(*configPath, community.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	if *schemaOut != "" {
		cfg.GraphQL.SchemaOutputFile = *schemaOut
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	cfg.Output = stdout

	module, err := cms.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build module: %w", err)
	}
	defer module.Close()

	if err := module.Init(ctx); err != nil {
		return err
	}

	registration, err := commands.RegisterContainerCommands(module.Container(), commands.RegistrationOptions{
		Dispatcher: commands.Dispatcher{},
	})
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	defer registration.Unsubscribe()

	if !*serve && !cfg.Features.HTTP {
		return nil
	}
	return serveAPI(ctx, module, cfg.Server.Addr)
}

// buildConfig layers the optional YAML runtime settings under the community
// content model.
func buildConfig(path string, user community.Credentials) (cms.Config, error) {
	cfg := community.Config(user)
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	runtime, err := cms.LoadRuntimeConfig(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if runtime.GraphQL.SchemaOutputFile == "" && !runtime.GraphQL.Disable {
		runtime.GraphQL.SchemaOutputFile = cfg.GraphQL.SchemaOutputFile
	}
	cfg.Config = runtime
	return cfg, nil
}

func serveAPI(ctx context.Context, module *cms.Module, addr string) error {
	handler, err := module.HTTPHandler()
	if err != nil {
		return fmt.Errorf("http handler: %w", err)
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		module.Logger().Info("community api listening", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
