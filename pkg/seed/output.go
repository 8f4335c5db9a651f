package seed

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// PrintResult writes a summary of the seed for the operator. Client secrets of
// APIs created by this run are shown once.
func PrintResult(w io.Writer, result *Result) {
	if result == nil {
		return
	}

	border := strings.Repeat("=", 80)
	fmt.Fprintf(w, "\n%s\nSEED COMPLETED\n%s\n", border, border)

	fmt.Fprintln(w, "\nRoles:")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, r := range result.Roles {
		fmt.Fprintf(w, "  %-12s %s\n", r.String(), r.Title())
	}

	fmt.Fprintln(w, "\nAdmin User:")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	fmt.Fprintf(w, "  Email:    %s\n", result.AdminEmail)
	fmt.Fprintf(w, "  User ID:  %s\n", result.AdminID)
	fmt.Fprintf(w, "  Status:   %s\n", status(result.AdminCreated, "Created", "Updated"))

	fmt.Fprintln(w, "\nApplications:")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	showWarning := false
	for _, a := range result.Apps {
		fmt.Fprintf(w, "  %-16s %-4s %s\n", a.ClientID, a.Type, status(a.Created, "Created", "Already existed"))
		if a.ClientSecret != "" {
			fmt.Fprintf(w, "  %-16s secret: %s\n", "", a.ClientSecret)
			showWarning = true
		}
	}

	if showWarning {
		fmt.Fprintln(w, "\nClient secrets are stored encrypted and will not be printed again.")
	}
	fmt.Fprintf(w, "%s\n\n", border)
}

// LogResult logs the seed summary without secrets.
func LogResult(result *Result) {
	if result == nil {
		return
	}

	created := 0
	for _, a := range result.Apps {
		if a.Created {
			created++
		}
	}
	slog.Info("seed summary",
		"roles", len(result.Roles),
		"admin_email", result.AdminEmail,
		"admin_id", result.AdminID,
		"admin_created", result.AdminCreated,
		"apps_created", created,
	)
}

func status(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
