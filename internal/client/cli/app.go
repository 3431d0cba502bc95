package cli

import (
	"bufio"
	"context"
	"errors"
	"log"
	"os"

	"github.com/akarpov87/authkeeper/internal/client/client"
	"github.com/akarpov87/authkeeper/internal/client/config"

	_ "modernc.org/sqlite"
)

type App struct {
	config *config.Config
	client client.Client
	reader *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	repos, err := client.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient := client.NewHTTPClient(c.ServerURL, c.RequestTimeout, repos.Tokens)

	return &App{config: c, client: apiClient, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	// Resume the previous session if a refresh token survived the restart.
	if err := a.client.RestoreSession(ctx); err == nil {
		if u := a.client.User(); u != nil {
			log.Printf("Welcome back, %s", u.Name)
		}
	} else if errors.Is(err, client.ErrUnavailable) {
		log.Println("Server unavailable, please try again later")
	}

	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.client.IsLoggedIn()
}
