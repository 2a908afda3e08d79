// Package krb acquires the Kerberos ticket that is required to authenticate
// against the Fedora infrastructure.
package krb

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/simplesurance/fedora-bot/internal/cmdrun"
	"github.com/simplesurance/fedora-bot/internal/logfields"
)

// Realm is the Kerberos realm of the Fedora account system.
const Realm = "FEDORAPROJECT.ORG"

// Ticket describes an acquired Kerberos ticket.
// It is created once before components are processed and never modified.
type Ticket struct {
	Principal string
	// CCache is the value of KRB5CCNAME, empty if the default cache
	// is used.
	CCache string
}

// Acquire runs kinit for user and verifies with klist that a valid ticket
// exists afterwards.
func Acquire(ctx context.Context, runner cmdrun.Runner, user, password string) (*Ticket, error) {
	if user == "" || password == "" {
		return nil, errors.New("user and password are required to acquire a kerberos ticket")
	}

	principal := fmt.Sprintf("%s@%s", user, Realm)
	logger := zap.L().Named("krb").With(zap.String("krb.principal", principal))

	logger.Debug("acquiring kerberos ticket", logfields.Event("krb_kinit_starting"))

	res, err := runner.Run(ctx, &cmdrun.Cmd{
		Name:  "kinit",
		Args:  []string{principal},
		Stdin: []byte(password + "\n"),
	})
	if err != nil {
		return nil, fmt.Errorf("kinit failed: %w", err)
	}

	if res.ExitCode != 0 {
		return nil, fmt.Errorf("kinit exited with code %d: %s", res.ExitCode, res.Output())
	}

	// klist -s exits non-zero if the cache holds no valid ticket
	res, err = runner.Run(ctx, &cmdrun.Cmd{Name: "klist", Args: []string{"-s"}})
	if err != nil {
		return nil, fmt.Errorf("klist failed: %w", err)
	}

	if res.ExitCode != 0 {
		return nil, fmt.Errorf("no valid kerberos ticket found after kinit: %s", res.Output())
	}

	t := Ticket{
		Principal: principal,
		CCache:    os.Getenv("KRB5CCNAME"),
	}

	logger.Info(
		"kerberos ticket acquired",
		logfields.Event("krb_ticket_acquired"),
		zap.String("krb.ccache", t.CCache),
	)

	return &t, nil
}
