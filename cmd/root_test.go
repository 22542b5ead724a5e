package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"github.com/zeebo/assert"

	"github.com/pentesthub/pentest-hub/internal/log"
	"github.com/pentesthub/pentest-hub/pkg/version"
)

func findCommand(t *testing.T, root *cobra.Command, name string) *cobra.Command {
	t.Helper()
	for _, c := range root.Commands() {
		if c.Name() == name {
			return c
		}
	}
	t.Fatalf("command %s not found", name)
	return nil
}

// TestNewRootCmd tests the newRootCmd function.
func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()

	if diff := cmp.Diff("pentest-hub", cmd.Use); diff != "" {
		t.Errorf("cmd.Use mismatch (-want +got):\n%s", diff)
	}

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	want := []string{"export", "import", "migrate", "serve", "version"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("subcommands mismatch (-want +got):\n%s", diff)
	}

	flags := []string{
		"config", "log-level", "db-type", "db-path", "db-host", "db-port", "db-user", "db-password", "db-name",
		"db-ssl-mode", "db-instance-connection-name", "db-log-level", "storage-dir", "docx-engine",
	}
	for _, flag := range flags {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("flag %s should be defined", flag)
		}
	}
}

func TestSubcommandFlags(t *testing.T) {
	root := newRootCmd()
	tests := []struct {
		command string
		flags   []string
	}{
		{"serve", []string{"listen-addr", "pprof-addr", "seed-samples"}},
		{"import", []string{"tool", "project-id", "file"}},
		{"export", []string{"project-id", "template-id", "output-type", "output-file"}},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			sub := findCommand(t, root, tt.command)
			for _, flag := range tt.flags {
				if sub.Flags().Lookup(flag) == nil {
					t.Errorf("flag %s should be defined on %s", flag, tt.command)
				}
			}
		})
	}
}

// TestPreRunE_MissingRequiredFlags tests the required flag checks of import and export.
func TestPreRunE_MissingRequiredFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "import without tool",
			args: []string{"import", "--project-id", "1", "--file", "scan.xml"},
			want: "tool is required and cannot be empty",
		},
		{
			name: "import without file",
			args: []string{"import", "--tool", "burp", "--project-id", "1"},
			want: "file is required and cannot be empty",
		},
		{
			name: "import without project",
			args: []string{"import", "--tool", "burp", "--file", "scan.xml"},
			want: "project-id is required and cannot be empty",
		},
		{
			name: "export without template",
			args: []string{"export", "--project-id", "1"},
			want: "template-id is required and cannot be empty",
		},
		{
			name: "export without project",
			args: []string{"export", "--template-id", "1"},
			want: "project-id is required and cannot be empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if err == nil {
				t.Fatal("expected an error but got nil")
			}
			if diff := cmp.Diff(tt.want, err.Error()); diff != "" {
				t.Errorf("error message mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestPreRunE_InvalidFlag tests an unknown flag.
func TestPreRunE_InvalidFlag(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"import", "--invalid-flag", "value"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected an error but got nil")
	}
	if diff := cmp.Diff("unknown flag: --invalid-flag", err.Error()); diff != "" {
		t.Errorf("error message mismatch (-want +got):\n%s", diff)
	}
}

func TestVersionCmd(t *testing.T) {
	version.Version = "v1.2.3"
	version.CommitSHA = "abc123"

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	assert.NoError(t, cmd.Execute())
	assert.Equal(t, "version: v1.2.3\ncommit: abc123\n", out.String())
}

func TestInitializeConfig(t *testing.T) {
	t.Run("environment fills unset flags", func(t *testing.T) {
		t.Setenv("PENTEST_HUB_DB_PATH", "/tmp/from-env.db")
		t.Setenv("PENTEST_HUB_DOCX_ENGINE", "false")
		t.Setenv("PENTEST_HUB_LOG_LEVEL", "debug")

		cmd := newRootCmd()
		assert.NoError(t, cmd.ParseFlags(nil))
		assert.NoError(t, initializeConfig(cmd))

		logLevel, err := cmd.Flags().GetString("log-level")
		assert.NoError(t, err)
		assert.Equal(t, "debug", logLevel)

		dbPath, err := cmd.Flags().GetString("db-path")
		assert.NoError(t, err)
		assert.Equal(t, "/tmp/from-env.db", dbPath)
		docx, err := cmd.Flags().GetBool("docx-engine")
		assert.NoError(t, err)
		assert.Equal(t, false, docx)
	})

	t.Run("command line wins over environment", func(t *testing.T) {
		t.Setenv("PENTEST_HUB_DB_TYPE", "postgres")

		cmd := newRootCmd()
		assert.NoError(t, cmd.ParseFlags([]string{"--db-type", "sqlite"}))
		assert.NoError(t, initializeConfig(cmd))

		dbType, err := cmd.Flags().GetString("db-type")
		assert.NoError(t, err)
		assert.Equal(t, "sqlite", dbType)
	})

	t.Run("config file", func(t *testing.T) {
		cfg := filepath.Join(t.TempDir(), "pentest-hub.yaml")
		content := strings.Join([]string{
			"db-type: postgres",
			"db-host: db.internal",
			"storage-dir: /srv/uploads",
		}, "\n")
		assert.NoError(t, os.WriteFile(cfg, []byte(content), 0o600))

		cmd := newRootCmd()
		assert.NoError(t, cmd.ParseFlags([]string{"--config", cfg}))
		assert.NoError(t, initializeConfig(cmd))

		config, err := databaseConfig(cmd)
		assert.NoError(t, err)
		assert.Equal(t, "postgres", config.DBType)
		assert.Equal(t, "db.internal", config.DBHost)
		assert.Equal(t, "5432", config.DBPort)
		storageDir, err := cmd.Flags().GetString("storage-dir")
		assert.NoError(t, err)
		assert.Equal(t, "/srv/uploads", storageDir)
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		cmd := newRootCmd()
		assert.NoError(t, cmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}))
		assert.Error(t, initializeConfig(cmd))
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("PENTEST_HUB_DOCX_ENGINE", "sometimes")

		cmd := newRootCmd()
		assert.NoError(t, cmd.ParseFlags(nil))
		err := initializeConfig(cmd)
		assert.Error(t, err)
		assert.Equal(t, true, strings.Contains(err.Error(), "invalid value for docx-engine"))
	})
}

func TestCommandLogger(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{level: "debug"},
		{level: "warn"},
		{level: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cmd := newRootCmd()
			assert.NoError(t, cmd.ParseFlags([]string{"--log-level", tt.level}))

			ctx, logger, err := commandLogger(cmd)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, logger, log.NewLogger(ctx))
		})
	}
}
