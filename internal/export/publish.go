package export

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jlaffaye/ftp"
)

type Publisher interface {
	Publish(ctx context.Context, files []File) error
}

// Dir writes reports into a local directory.
type Dir struct {
	Path string
}

func (d Dir) Publish(ctx context.Context, files []File) error {
	if err := os.MkdirAll(d.Path, 0755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := filepath.Join(d.Path, f.Name)
		if err := os.WriteFile(p, f.Data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
		log.Printf("export: wrote %s (%s)", p, humanize.Bytes(uint64(len(f.Data))))
	}
	return nil
}

// FTP uploads reports to a remote directory.
type FTP struct {
	Addr     string
	User     string
	Password string
	Dir      string
	Timeout  time.Duration
}

func (f FTP) Publish(ctx context.Context, files []File) error {
	timeout := f.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	conn, err := ftp.Dial(f.Addr, ftp.DialWithTimeout(timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return fmt.Errorf("ftp dial: %w", err)
	}
	defer conn.Quit()

	user, pass := f.User, f.Password
	if user == "" {
		user, pass = "anonymous", "anonymous"
	}
	if err := conn.Login(user, pass); err != nil {
		return fmt.Errorf("ftp login: %w", err)
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		remote := file.Name
		if f.Dir != "" {
			remote = path.Join(f.Dir, file.Name)
		}
		if err := conn.Stor(remote, bytes.NewReader(file.Data)); err != nil {
			return fmt.Errorf("ftp stor %s: %w", remote, err)
		}
		log.Printf("export: uploaded %s to %s (%s)", remote, f.Addr, humanize.Bytes(uint64(len(file.Data))))
	}
	return nil
}

var (
	_ Publisher = Dir{}
	_ Publisher = FTP{}
)
