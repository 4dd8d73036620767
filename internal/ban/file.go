package ban

import (
	"bufio"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// filePollInterval stands in for the source's debounced filesystem watcher
// (notify_debouncer_full has no equivalent in the dependency pack — see
// DESIGN.md). A 1s poll matches the source's own debounce window.
const filePollInterval = time.Second

// File is a ban list backed by a plain-text file of one IP per line,
// reloaded on a background poll so an admin editing the file by hand takes
// effect without a restart — ban.rs's FileBanCheck.
type File struct {
	path string

	mu   sync.Mutex
	bans map[string]struct{}

	stop chan struct{}
}

// NewFile loads path (creating it if absent) and starts the reload poller.
// Call Close to stop the poller when the server shuts down.
func NewFile(path string) (*File, error) {
	f := &File{path: path, stop: make(chan struct{})}
	bans, err := readBanFile(path)
	if err != nil {
		return nil, err
	}
	f.bans = bans
	go f.pollLoop()
	return f, nil
}

func (f *File) pollLoop() {
	ticker := time.NewTicker(filePollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-f.stop:
			return
		case <-ticker.C:
			bans, err := readBanFile(f.path)
			if err != nil {
				log.Warn().Err(err).Str("path", f.path).Msg("ban file reload failed")
				continue
			}
			f.mu.Lock()
			f.bans = bans
			f.mu.Unlock()
		}
	}
}

func (f *File) Close() { close(f.stop) }

func (f *File) Check(ip net.IP) Response {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bans[ip.String()]; ok {
		return Banned
	}
	return Allowed
}

func (f *File) Ban(ip net.IP) {
	f.mu.Lock()
	f.bans[ip.String()] = struct{}{}
	snapshot := f.snapshotLocked()
	f.mu.Unlock()
	go f.writeBanFile(snapshot)
}

func (f *File) ClearAll() {
	f.mu.Lock()
	f.bans = make(map[string]struct{})
	f.mu.Unlock()
	go f.writeBanFile(nil)
}

func (f *File) snapshotLocked() []string {
	out := make([]string, 0, len(f.bans))
	for ip := range f.bans {
		out = append(out, ip)
	}
	return out
}

// writeBanFile runs off the main task; any error is logged and dropped,
// never propagated to the tick loop (spec §7).
func (f *File) writeBanFile(ips []string) {
	tmp, err := os.Create(f.path)
	if err != nil {
		log.Warn().Err(err).Str("path", f.path).Msg("ban file write failed")
		return
	}
	defer tmp.Close()
	w := bufio.NewWriter(tmp)
	for _, ip := range ips {
		w.WriteString(ip)
		w.WriteString("\n")
	}
	if err := w.Flush(); err != nil {
		log.Warn().Err(err).Str("path", f.path).Msg("ban file flush failed")
	}
}

func readBanFile(path string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if ip := net.ParseIP(line); ip != nil {
			out[ip.String()] = struct{}{}
		}
	}
	return out, scanner.Err()
}
