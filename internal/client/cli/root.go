package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to SalonDesk CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
