package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
)

func (a *App) getStatus() string {
	if !a.isLoggedIn() {
		return "(logged out)"
	}
	if u := a.client.User(); u != nil {
		return fmt.Sprintf("(%s)", u.Email)
	}
	return "(logged in)"
}

func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to AuthKeeper CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
