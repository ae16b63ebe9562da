package infrastructure

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/downlyapp/downly/internal/domain"
)

// bundled tool subdirectories probed relative to the executable
var bundleSubdirs = []string{"tools", "bin", "binaries"}

// ExecToolResolver implements domain.ToolResolver. Lookup order: explicitly
// configured path, configured bundle directory, directories next to the
// running executable, then $PATH. Results are cached.
type ExecToolResolver struct {
	config *domain.ToolsConfig

	mu    sync.Mutex
	cache map[string]string
}

// NewExecToolResolver creates a resolver for the configured tool locations
func NewExecToolResolver(config *domain.ToolsConfig) *ExecToolResolver {
	return &ExecToolResolver{
		config: config,
		cache:  make(map[string]string),
	}
}

// DownloaderPath resolves the yt-dlp executable
func (r *ExecToolResolver) DownloaderPath() (string, error) {
	return r.resolve("yt-dlp", r.config.Downloader)
}

// ProcessorPath resolves the ffmpeg executable
func (r *ExecToolResolver) ProcessorPath() (string, error) {
	return r.resolve("ffmpeg", r.config.Processor)
}

func (r *ExecToolResolver) resolve(tool, configured string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache[tool]; ok {
		return cached, nil
	}

	if configured != "" {
		if fileExists(configured) {
			r.cache[tool] = configured
			return configured, nil
		}
		return "", &domain.DependencyNotFoundError{Tool: tool}
	}

	exe := tool + executableSuffix()

	if r.config.BundleDir != "" {
		candidate := filepath.Join(r.config.BundleDir, exe)
		if fileExists(candidate) {
			r.cache[tool] = candidate
			return candidate, nil
		}
	}

	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		for _, subdir := range bundleSubdirs {
			candidate := filepath.Join(execDir, subdir, exe)
			if fileExists(candidate) {
				r.cache[tool] = candidate
				return candidate, nil
			}
		}
	}

	if path, err := exec.LookPath(tool); err == nil {
		r.cache[tool] = path
		return path, nil
	}

	return "", &domain.DependencyNotFoundError{Tool: tool}
}

// ClearCache drops cached paths (useful after installing tools at runtime)
func (r *ExecToolResolver) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]string)
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
