/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	applog "gofountain/internal/log"
)

const (
	// IndexDirName holds the index, backups and lock files next to a script.
	IndexDirName   = ".fountain"
	BackupsDirName = "backups"

	lockRetryDelay = 50 * time.Millisecond
)

// lockTimeout bounds how long WriteScript waits for another writer.
var lockTimeout = 5 * time.Second

var (
	// ErrLocked is returned when another writer holds the script lock.
	ErrLocked = errors.New("script is locked by another writer")
	// ErrUnsupportedURL is returned for URLs that do not name a local file.
	ErrUnsupportedURL = errors.New("only file URLs are supported")
)

// ReadScript returns the raw bytes of the script at path.
func ReadScript(path string) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("script path is required")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return b, nil
}

// WriteScript replaces the script at path with data. The previous version is
// copied to a timestamped backup first, and the new content is written to a
// temp file in the same directory, synced and renamed over the target while
// holding the script's lock file.
func WriteScript(path string, data []byte) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("script path is required")
	}
	l := applog.WithOperation(applog.WithComponent("storage"), "write_script").With(slog.String("path", path))
	dir := filepath.Dir(path)
	meta := filepath.Join(dir, IndexDirName)
	if err := os.MkdirAll(meta, 0o755); err != nil {
		return fmt.Errorf("create %s dir: %w", IndexDirName, err)
	}

	lock := flock.New(filepath.Join(meta, filepath.Base(path)+".lock"))
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("lock script: %w", err)
	}
	if !ok {
		l.Warn("script lock busy")
		return ErrLocked
	}
	defer func() { _ = lock.Unlock() }()

	if _, statErr := os.Stat(path); statErr == nil {
		bpath, err := backupPath(path)
		if err != nil {
			return err
		}
		if cerr := copyFile(path, bpath); cerr != nil {
			return fmt.Errorf("backup current script: %w", cerr)
		}
	}

	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp script: %w", werr)
	}
	// rename replaces atomically everywhere but Windows
	if runtime.GOOS == "windows" {
		if _, err := os.Stat(path); err == nil {
			_ = os.Remove(path)
		}
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace script: %w", rerr)
	}
	l.Debug("script written", slog.Int("bytes", len(data)))
	return nil
}

// ScriptFromURL returns the local path named by a file URL.
func ScriptFromURL(u *url.URL) (string, error) {
	if u == nil {
		return "", errors.New("nil URL")
	}
	if u.Scheme != "" && u.Scheme != "file" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedURL, u.Scheme)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("%w: remote host %s", ErrUnsupportedURL, u.Host)
	}
	if u.Path == "" {
		return "", errors.New("file URL has no path")
	}
	return filepath.FromSlash(u.Path), nil
}

// Backups lists the backups of the script at path, oldest first.
func Backups(path string) ([]string, error) {
	bdir := filepath.Join(filepath.Dir(path), IndexDirName, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out, nil
}

// backupPath names a new backup of path. The counter keeps backups written
// within the same second apart and in order.
func backupPath(path string) (string, error) {
	bdir := filepath.Join(filepath.Dir(path), IndexDirName, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	stamp := time.Now().Format("20060102-150405")
	for i := 0; ; i++ {
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s-%02d.bak", filepath.Base(path), stamp, i))
		if _, err := os.Stat(bpath); errors.Is(err, os.ErrNotExist) {
			return bpath, nil
		}
	}
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
