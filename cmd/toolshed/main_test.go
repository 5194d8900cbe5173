package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/toolshed/internal/common"
	"github.com/Veraticus/toolshed/internal/config"
	"github.com/Veraticus/toolshed/internal/gateway"
	"github.com/Veraticus/toolshed/internal/model"
	"github.com/Veraticus/toolshed/internal/session"
	"github.com/Veraticus/toolshed/internal/storage"
)

// fakeAPI serves a two-tool catalog and counts review submissions.
type fakeAPI struct {
	submissions  atomic.Int32
	rejectSubmit atomic.Bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/tools":
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "1", "name": "LensKit", "description": "Image tagging", "useCase": "computer vision pipelines", "category": "Computer Vision", "pricing": "Paid", "avgRating": 4.5, "reviewCount": 2},
			{"id": "2", "name": "Wordsmith", "description": "Copy drafts", "useCase": "marketing text", "category": "NLP", "pricing": "Free", "avgRating": 3, "reviewCount": 1},
		})
	case r.Method == http.MethodGet && r.URL.Path == "/api/tools/7":
		_ = json.NewEncoder(w).Encode(map[string]any{
			"_id": "65f0c0ffee", "name": "Atlas", "description": "Maps", "useCase": "geo search",
			"category": "Analytics", "pricing": "Free", "avgRating": 5, "reviewCount": 1,
		})
	case r.Method == http.MethodGet && r.URL.Path == "/api/reviews/7":
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "r9", "rating": 5, "username": "lee", "comment": "Spot on"},
		})
	case r.Method == http.MethodGet && r.URL.Path == "/api/reviews/65f0c0ffee":
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Invalid tool id"}`))
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/reviews/"):
		_ = json.NewEncoder(w).Encode([]map[string]any{})
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/reviews/"):
		f.submissions.Add(1)
		if f.rejectSubmit.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail":"Database unavailable"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "r-1", "message": "ok"})
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not found"}`))
	}
}

func setupCommandEnv(t *testing.T) *fakeAPI {
	t.Helper()

	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	saved := settings
	settings = config.Settings{
		DatabasePath: filepath.Join(t.TempDir(), "toolshed.db"),
		LogLevel:     "error",
		LogFormat:    "console",
		API:          gateway.Config{BaseURL: srv.URL, MaxRetries: 1},
	}
	t.Cleanup(func() { settings = saved })

	return api
}

// signIn persists a token for username the way login does.
func signIn(t *testing.T, username string, role model.Role) {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"role":     string(role),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	ctx := context.Background()
	store, err := storage.Open(ctx, settings.DatabasePath)
	require.NoError(t, err)
	require.NoError(t, store.SaveCredential(ctx, session.TokenKey, token))
	require.NoError(t, store.Close())
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	for _, name := range []string{"login", "signup", "logout", "whoami", "tools", "reviews", "stats", "browse", "version"} {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, cmd.Name())
		})
	}

	for _, flag := range []string{"config", "log-level", "log-format", "api-url", "db"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestSubcommands(t *testing.T) {
	tests := []struct {
		parent string
		want   []string
	}{
		{parent: "tools", want: []string{"list", "show", "add", "update", "delete"}},
		{parent: "reviews", want: []string{"submit", "pending", "approve", "reject"}},
	}

	for _, tt := range tests {
		t.Run(tt.parent, func(t *testing.T) {
			for _, sub := range tt.want {
				cmd, _, err := rootCmd.Find([]string{tt.parent, sub})
				require.NoError(t, err)
				assert.Equal(t, sub, cmd.Name())
			}
		})
	}
}

func TestFilterFromFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    model.FilterState
		wantErr bool
	}{
		{
			name: "no flags",
			args: nil,
			want: model.FilterState{},
		},
		{
			name: "categories are case insensitive",
			args: []string{"--category", "nlp,computer vision", "--pricing", "free"},
			want: model.FilterState{
				Categories:    []model.Category{model.CategoryNLP, model.CategoryComputerVision},
				PricingModels: []model.PricingModel{model.PricingFree},
			},
		},
		{
			name: "rating and search",
			args: []string{"--min-rating", "3.5", "--search", "vision"},
			want: model.FilterState{MinRating: 3.5, SearchQuery: "vision"},
		},
		{name: "unknown category", args: []string{"--category", "Robotics"}, wantErr: true},
		{name: "unknown pricing", args: []string{"--pricing", "Donation"}, wantErr: true},
		{name: "rating off the grid", args: []string{"--min-rating", "3.3"}, wantErr: true},
		{name: "rating too high", args: []string{"--min-rating", "6"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := toolsListCmd()
			require.NoError(t, cmd.ParseFlags(tt.args))

			got, err := filterFromFlags(cmd)
			if tt.wantErr {
				var verr *common.ValidationError
				assert.True(t, errors.As(err, &verr), "want validation error, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPatchFromFlags(t *testing.T) {
	cmd := toolsUpdateCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--name", "New Name", "--category", "analytics", "--website", ""}))

	patch := patchFromFlags(cmd)

	require.NotNil(t, patch.Name)
	assert.Equal(t, "New Name", *patch.Name)
	require.NotNil(t, patch.Category)
	assert.Equal(t, model.CategoryAnalytics, *patch.Category)
	require.NotNil(t, patch.Website)
	assert.Empty(t, *patch.Website)
	assert.Nil(t, patch.Description)
	assert.Nil(t, patch.UseCase)
	assert.Nil(t, patch.PricingModel)
}

func TestServerQuery(t *testing.T) {
	one := serverQuery(model.FilterState{
		Categories:    []model.Category{model.CategoryNLP},
		PricingModels: []model.PricingModel{model.PricingFree, model.PricingPaid},
		MinRating:     2,
	})
	assert.Equal(t, model.CategoryNLP, one.Category)
	assert.Empty(t, one.Pricing)
	assert.InDelta(t, 2.0, one.MinRating, 0.001)
}

func TestToolsList(t *testing.T) {
	setupCommandEnv(t)

	out, err := execute(t, toolsListCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "LensKit")
	assert.Contains(t, out, "Wordsmith")

	out, err = execute(t, toolsListCmd(), "--search", "vision")
	require.NoError(t, err)
	assert.Contains(t, out, "LensKit")
	assert.NotContains(t, out, "Wordsmith")
}

func TestToolsShowFetchesReviewsByRequestedID(t *testing.T) {
	setupCommandEnv(t)

	out, err := execute(t, toolsShowCmd(), "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Atlas")
	assert.Contains(t, out, "Spot on")
}

func TestReviewsSubmit(t *testing.T) {
	t.Run("guest is asked to sign in", func(t *testing.T) {
		api := setupCommandEnv(t)

		_, err := execute(t, reviewsSubmitCmd(), "2", "--rating", "4", "--name", "sam", "--comment", "handy")
		var authErr *common.AuthError
		require.True(t, errors.As(err, &authErr), "want auth error, got %v", err)
		assert.Equal(t, "Please sign in to review tools", common.UserMessage(err))
		assert.Zero(t, api.submissions.Load())
	})

	t.Run("signed in review reaches the server", func(t *testing.T) {
		api := setupCommandEnv(t)
		signIn(t, "sam", model.RoleUser)

		out, err := execute(t, reviewsSubmitCmd(), "2", "--rating", "4", "--comment", "handy")
		require.NoError(t, err)
		assert.Contains(t, out, "Review submitted for moderation")
		assert.Equal(t, int32(1), api.submissions.Load())
	})

	t.Run("refused review is reported as not submitted", func(t *testing.T) {
		api := setupCommandEnv(t)
		api.rejectSubmit.Store(true)
		signIn(t, "sam", model.RoleUser)

		out, err := execute(t, reviewsSubmitCmd(), "2", "--rating", "4")
		require.Error(t, err)
		assert.Equal(t, "The review was not submitted: Request failed (500): Database unavailable", common.UserMessage(err))
		assert.NotContains(t, out, "submitted for moderation")
	})

	t.Run("unknown tool", func(t *testing.T) {
		setupCommandEnv(t)
		signIn(t, "sam", model.RoleUser)

		_, err := execute(t, reviewsSubmitCmd(), "99", "--rating", "4", "--name", "sam")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("invalid rating", func(t *testing.T) {
		setupCommandEnv(t)
		signIn(t, "sam", model.RoleUser)

		_, err := execute(t, reviewsSubmitCmd(), "2", "--rating", "9", "--name", "sam")
		var verr *common.ValidationError
		assert.True(t, errors.As(err, &verr), "want validation error, got %v", err)
	})
}

func TestAdminCommandsRequireSignIn(t *testing.T) {
	tests := []struct {
		cmd  func() *cobra.Command
		name string
		args []string
	}{
		{name: "stats", cmd: statsCmd},
		{name: "pending", cmd: reviewsPendingCmd},
		{name: "add", cmd: toolsAddCmd, args: []string{"--name", "X", "--use-case", "y", "--category", "NLP", "--pricing", "Free"}},
		{name: "delete", cmd: toolsDeleteCmd, args: []string{"1", "--yes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCommandEnv(t)

			_, err := execute(t, tt.cmd(), tt.args...)
			var authErr *common.AuthError
			require.True(t, errors.As(err, &authErr), "want auth error, got %v", err)
			assert.Equal(t, "Please sign in", common.UserMessage(err))
		})
	}
}

func TestRefusedChangeIsNotReportedAsDone(t *testing.T) {
	setupCommandEnv(t)
	signIn(t, "root", model.RoleAdmin)

	out, err := execute(t, toolsAddCmd(),
		"--name", "Seer", "--description", "Image tagging", "--use-case", "tagging", "--category", "Computer Vision", "--pricing", "Paid")

	require.Error(t, err)
	assert.Equal(t, "The new tool was not saved by the server: Request failed (404): Not found", common.UserMessage(err))
	assert.NotContains(t, out, "Added")
}

func TestWhoamiAsGuest(t *testing.T) {
	setupCommandEnv(t)

	out, err := execute(t, whoamiCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "guest")
}
