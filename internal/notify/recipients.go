package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/kartsetup/setupsheet/internal/auth"
	"github.com/kartsetup/setupsheet/internal/team"
)

// Recipients returns the addresses that should hear about a new submission
// for t: the team's configured manager list, or failing that every manager
// account of the team, plus the global fallback. Addresses are lower-cased
// and de-duplicated.
func Recipients(ctx context.Context, users auth.UserRepository, t *team.Team, fallback string) ([]string, error) {
	candidates := append([]string(nil), t.ManagerEmails...)

	if len(nonEmpty(candidates)) == 0 {
		managers, err := users.ListManagers(ctx, t.ID)
		if err != nil {
			return nil, fmt.Errorf("listing team managers: %w", err)
		}
		candidates = candidates[:0]
		for _, m := range managers {
			candidates = append(candidates, m.Email)
		}
	}
	candidates = append(candidates, fallback)

	seen := make(map[string]bool, len(candidates))
	out := []string{}
	for _, addr := range candidates {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		out = append(out, addr)
	}
	return out, nil
}

func nonEmpty(list []string) []string {
	var out []string
	for _, s := range list {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
