package permissions

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDirs creates <tmp>/accessible/file.txt and <tmp>/inaccessible/secret.txt.
func setupTestDirs(t *testing.T) (tmp, accessible, inaccessible string) {
	t.Helper()

	tmp = t.TempDir()
	accessible = filepath.Join(tmp, "accessible")
	inaccessible = filepath.Join(tmp, "inaccessible")

	require.NoError(t, os.MkdirAll(accessible, 0755))
	require.NoError(t, os.MkdirAll(inaccessible, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(accessible, "file.txt"), []byte("content"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(inaccessible, "secret.txt"), []byte("secret"), 0644))

	return tmp, accessible, inaccessible
}

// =============================================================================
// PATH ACCESS
// =============================================================================

func TestIsPathAccessible_ExistingFileInAccessiblePath(t *testing.T) {
	_, accessible, _ := setupTestDirs(t)

	err := IsPathAccessible(filepath.Join(accessible, "file.txt"), []string{accessible})
	assert.NoError(t, err)
}

func TestIsPathAccessible_ExistingFileInInaccessiblePath(t *testing.T) {
	_, accessible, inaccessible := setupTestDirs(t)

	path := filepath.Join(inaccessible, "secret.txt")
	err := IsPathAccessible(path, []string{accessible})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPathNotAllowed)
	assert.EqualError(t, err, fmt.Sprintf(
		"Operation on path '%s' is not allowed. It's not within any of the accessible paths: [%q].", path, accessible))
}

func TestIsPathAccessible_NewFileInAccessiblePath(t *testing.T) {
	_, accessible, _ := setupTestDirs(t)

	err := IsPathAccessible(filepath.Join(accessible, "new_file.txt"), []string{accessible})
	assert.NoError(t, err)
}

func TestIsPathAccessible_NewFileInInaccessiblePath(t *testing.T) {
	_, accessible, inaccessible := setupTestDirs(t)

	err := IsPathAccessible(filepath.Join(inaccessible, "new_secret.txt"), []string{accessible})
	assert.ErrorIs(t, err, ErrPathNotAllowed)
}

func TestIsPathAccessible_NestedPath(t *testing.T) {
	_, accessible, _ := setupTestDirs(t)
	nested := filepath.Join(accessible, "deeply", "nested", "dir")
	require.NoError(t, os.MkdirAll(nested, 0755))

	err := IsPathAccessible(filepath.Join(nested, "nested_file.txt"), []string{accessible})
	assert.NoError(t, err)
}

func TestIsPathAccessible_ParentOfAccessibleRootIsDenied(t *testing.T) {
	_, accessible, _ := setupTestDirs(t)
	subdir := filepath.Join(accessible, "subdir")
	require.NoError(t, os.MkdirAll(subdir, 0755))

	err := IsPathAccessible(accessible, []string{subdir})
	assert.ErrorIs(t, err, ErrPathNotAllowed)
}

func TestIsPathAccessible_MissingParent(t *testing.T) {
	_, accessible, inaccessible := setupTestDirs(t)

	parent := filepath.Join(inaccessible, "no_such_dir")
	err := IsPathAccessible(filepath.Join(parent, "file.txt"), []string{accessible})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPathUnresolvable)
	assert.True(t, strings.HasPrefix(err.Error(), fmt.Sprintf("Failed to resolve path '%s': ", parent)), err.Error())
	assert.True(t, strings.HasSuffix(err.Error(), ". It might not exist or there's a permission issue."), err.Error())
}

func TestIsPathAccessible_MultipleRoots(t *testing.T) {
	tmp, accessible, inaccessible := setupTestDirs(t)
	another := filepath.Join(tmp, "another_accessible")
	require.NoError(t, os.Mkdir(another, 0755))

	roots := []string{accessible, another}

	assert.NoError(t, IsPathAccessible(filepath.Join(accessible, "file.txt"), roots))
	assert.NoError(t, IsPathAccessible(filepath.Join(another, "another_file.txt"), roots))
	assert.Error(t, IsPathAccessible(filepath.Join(inaccessible, "secret.txt"), roots))
}

func TestIsPathAccessible_SiblingWithSharedPrefixIsDenied(t *testing.T) {
	_, accessible, _ := setupTestDirs(t)
	sibling := accessible + "2"
	require.NoError(t, os.Mkdir(sibling, 0755))

	err := IsPathAccessible(filepath.Join(sibling, "x.txt"), []string{accessible})
	assert.ErrorIs(t, err, ErrPathNotAllowed)
}

func TestIsPathAccessible_SymlinkEscapeIsDenied(t *testing.T) {
	_, accessible, inaccessible := setupTestDirs(t)
	link := filepath.Join(accessible, "escape")
	if err := os.Symlink(inaccessible, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	err := IsPathAccessible(filepath.Join(link, "secret.txt"), []string{accessible})
	assert.ErrorIs(t, err, ErrPathNotAllowed)
}

func TestIsPathAccessible_UnresolvableRootIsSkipped(t *testing.T) {
	tmp, accessible, _ := setupTestDirs(t)
	roots := []string{filepath.Join(tmp, "does-not-exist"), accessible}

	assert.NoError(t, IsPathAccessible(filepath.Join(accessible, "file.txt"), roots))
}

func TestIsPathAccessible_NoRoots(t *testing.T) {
	_, accessible, _ := setupTestDirs(t)
	assert.ErrorIs(t, IsPathAccessible(filepath.Join(accessible, "file.txt"), nil), ErrPathNotAllowed)
}

func TestIsPathAccessible_EmptyPathHasNoParent(t *testing.T) {
	err := IsPathAccessible("", []string{"."})
	assert.ErrorIs(t, err, ErrNoParent)
	assert.EqualError(t, err, "Cannot check accessibility for '' because it has no parent directory.")
}

func TestIsPathAccessible_RelativeNewFileInCwd(t *testing.T) {
	_, accessible, _ := setupTestDirs(t)
	origWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(accessible))
	t.Cleanup(func() { _ = os.Chdir(origWD) })

	err = IsPathAccessible("new_file_in_cwd.txt", []string{"."})
	assert.NoError(t, err)
}

// =============================================================================
// COMMAND ALLOWLIST
// =============================================================================

func TestIsCommandAllowed(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		prefixes []string
		allowed  bool
	}{
		{"empty whitelist allows all", "ls -l", nil, true},
		{"single prefix", "ls -l", []string{"ls"}, true},
		{"not matching", "rm -rf /", []string{"ls", "echo"}, false},
		{"second prefix matches", "echo 'hello'", []string{"ls", "echo"}, true},
		{"full path allowed", "/bin/ls -a", []string{"/bin/ls"}, true},
		{"full path not allowed", "/usr/bin/rm -rf /", []string{"/bin/ls"}, false},
		{"multi word prefix", "git diff --stat", []string{"git diff"}, true},
		{"multi word prefix mismatch", "git push", []string{"git diff"}, false},
		{"leading space is not trimmed", " ls", []string{"ls"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := IsCommandAllowed(tt.command, tt.prefixes)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCommandNotAllowed)
			assert.Contains(t, err.Error(), tt.command)
		})
	}
}

func TestIsCommandAllowed_Message(t *testing.T) {
	err := IsCommandAllowed("rm -rf /", []string{"ls", "git diff"})

	var denied *Error
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, ErrCommandNotAllowed, denied.Kind)
	assert.EqualError(t, err,
		"Command `rm -rf /` is not allowed. It does not start with any of the allowed prefixes: [\"ls\", \"git diff\"].")
}

// =============================================================================
// IGNORED PATHS
// =============================================================================

func TestIsPathIgnored(t *testing.T) {
	tmp := t.TempDir()

	tests := []struct {
		name    string
		path    string
		ignored []string
		want    bool
	}{
		{"no entries", "src/main.go", nil, false},
		{"component match at root", ".git/config", []string{".git"}, true},
		{"component match nested", "vendor/x/.git/HEAD", []string{".git"}, true},
		{"component is not a substring match", ".github/workflows", []string{".git"}, false},
		{"path entry covers subtree", filepath.Join(tmp, "build", "out.o"), []string{filepath.Join(tmp, "build")}, true},
		{"path entry does not cover sibling", filepath.Join(tmp, "buildx", "out.o"), []string{filepath.Join(tmp, "build")}, false},
		{"blank entries skipped", "main.go", []string{"", "  "}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPathIgnored(tt.path, tt.ignored))
		})
	}
}

func TestIsPathIgnored_SymlinkToIgnoredTarget(t *testing.T) {
	_, accessible, _ := setupTestDirs(t)
	gitDir := filepath.Join(accessible, ".git")
	require.NoError(t, os.Mkdir(gitDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "config"), []byte("[core]"), 0644))

	link := filepath.Join(accessible, "meta")
	if err := os.Symlink(gitDir, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	assert.True(t, IsPathIgnored(link, []string{".git"}))
	assert.True(t, IsPathIgnored(filepath.Join(link, "config"), []string{".git"}))
	assert.True(t, IsPathIgnored(filepath.Join(link, "new_file"), []string{".git"}), "not-yet-existing file below the link")
	assert.True(t, IsPathIgnored(filepath.Join(link, "config"), []string{gitDir}))
	assert.False(t, IsPathIgnored(filepath.Join(accessible, "file.txt"), []string{".git"}))

	p := Policy{AccessiblePaths: []string{accessible}, IgnoredPaths: []string{".git"}}
	assert.ErrorIs(t, p.CheckPath(filepath.Join(link, "config")), ErrPathIgnored)
}

func TestPolicy(t *testing.T) {
	_, accessible, _ := setupTestDirs(t)
	p := Policy{
		AccessiblePaths:        []string{accessible},
		IgnoredPaths:           []string{".git"},
		AllowedCommandPrefixes: []string{"echo"},
	}

	assert.NoError(t, p.CheckPath(filepath.Join(accessible, "file.txt")))
	ignoredPath := filepath.Join(accessible, ".git", "config")
	err := p.CheckPath(ignoredPath)
	assert.ErrorIs(t, err, ErrPathIgnored)
	assert.EqualError(t, err, fmt.Sprintf(
		"Operation on path '%s' is not allowed. It matches one of the ignored paths: [\".git\"].", ignoredPath))
	assert.True(t, p.Ignored(filepath.Join(accessible, ".git")))
	assert.NoError(t, p.CheckCommand("echo hi"))
	assert.ErrorIs(t, p.CheckCommand("ls"), ErrCommandNotAllowed)
}
