package middleware

import (
	"context"
	"net/http"
)

// BranchHeader carries the branch code that scopes every catalog, inventory
// and table query.
const BranchHeader = "X-Branch-Code"

type contextKey string

const branchKey contextKey = "branchCode"

// RequireBranch rejects requests without a branch code and stores the code
// in the request context for handlers to read.
func RequireBranch(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		branch := r.Header.Get(BranchHeader)
		if branch == "" {
			http.Error(w, "Bad Request: "+BranchHeader+" header required", http.StatusBadRequest)
			return
		}
		ctx := context.WithValue(r.Context(), branchKey, branch)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BranchFromContext returns the branch code stored by RequireBranch, or ""
// if the middleware did not run.
func BranchFromContext(ctx context.Context) string {
	branch, _ := ctx.Value(branchKey).(string)
	return branch
}
