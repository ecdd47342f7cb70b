package security

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/marmos91/opcuad/internal/logger"
	"github.com/marmos91/opcuad/pkg/ua"
)

// CertificateGroup verifies peer certificates against a trust list. The
// trust list is a directory of DER files, reloaded when the directory
// changes.
type CertificateGroup interface {
	// Verify checks a peer certificate against the trust list.
	Verify(certificate []byte) ua.StatusCode
	// Close stops the watcher.
	Close() error
}

// permissiveCertGroup accepts every certificate. Used when no trust
// directory is configured (policy None deployments).
type permissiveCertGroup struct{}

func (permissiveCertGroup) Verify([]byte) ua.StatusCode { return ua.StatusGood }
func (permissiveCertGroup) Close() error                { return nil }

// NewPermissiveCertificateGroup returns a group that trusts everything.
func NewPermissiveCertificateGroup() CertificateGroup {
	return permissiveCertGroup{}
}

// TrustListCertificateGroup verifies certificates byte-exact against the
// DER files in a trust directory, watching it for changes.
type TrustListCertificateGroup struct {
	dir     string
	watcher *fsnotify.Watcher

	mu      sync.RWMutex
	trusted map[[sha256.Size]byte][]byte
}

// NewTrustListCertificateGroup loads a trust directory and starts watching
// it for additions and removals.
func NewTrustListCertificateGroup(dir string) (*TrustListCertificateGroup, error) {
	g := &TrustListCertificateGroup{
		dir:     dir,
		trusted: make(map[[sha256.Size]byte][]byte),
	}
	if err := g.reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("trust list watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch trust dir %q: %w", dir, err)
	}
	g.watcher = watcher
	go g.watch()
	return g, nil
}

func (g *TrustListCertificateGroup) watch() {
	log := logger.Category("security")
	for {
		select {
		case event, ok := <-g.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				if err := g.reload(); err != nil {
					log.Warn("trust list reload failed", logger.KeyError, err.Error())
				} else {
					log.Info("trust list reloaded", "dir", g.dir)
				}
			}
		case err, ok := <-g.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("trust list watcher error", logger.KeyError, err.Error())
		}
	}
}

func (g *TrustListCertificateGroup) reload() error {
	entries, err := os.ReadDir(g.dir)
	if err != nil {
		return fmt.Errorf("read trust dir %q: %w", g.dir, err)
	}
	trusted := make(map[[sha256.Size]byte][]byte)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ext := filepath.Ext(entry.Name()); ext != ".der" && ext != ".crt" {
			continue
		}
		der, err := os.ReadFile(filepath.Join(g.dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read certificate %q: %w", entry.Name(), err)
		}
		trusted[sha256.Sum256(der)] = der
	}
	g.mu.Lock()
	g.trusted = trusted
	g.mu.Unlock()
	return nil
}

// Verify checks a certificate against the trust list.
func (g *TrustListCertificateGroup) Verify(certificate []byte) ua.StatusCode {
	if len(certificate) == 0 {
		return ua.StatusBadCertificateInvalid
	}
	sum := sha256.Sum256(certificate)
	g.mu.RLock()
	der, ok := g.trusted[sum]
	g.mu.RUnlock()
	if !ok || !bytes.Equal(der, certificate) {
		return ua.StatusBadCertificateUntrusted
	}
	return ua.StatusGood
}

// Close stops the directory watcher.
func (g *TrustListCertificateGroup) Close() error {
	if g.watcher != nil {
		return g.watcher.Close()
	}
	return nil
}
