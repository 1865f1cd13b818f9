// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/histsearch/runner.go
// Summary: Executes the activated command in a pty and streams its output
//          lines, stripped of escape sequences, to the app.

package histsearch

import (
	"bufio"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"
)

// Runner executes one command at a time under a pseudo-terminal. Starting a
// new command stops the previous one.
type Runner struct {
	// OnLine receives each output line, already stripped of escape
	// sequences. Called from the reader goroutine.
	OnLine func(line string)

	// OnExit is called when the command finishes, with its error if any.
	// Called from the waiter goroutine.
	OnExit func(err error)

	mu   sync.Mutex
	cmd  *exec.Cmd
	ptmx *os.File
	stop chan struct{}
	wg   sync.WaitGroup
}

// Run starts command under a pty sized cols x rows. A command already
// running is stopped first.
func (r *Runner) Run(command string, cols, rows int) error {
	r.Stop()

	cmd := exec.Command("sh", "-c", command)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		log.Printf("[RUNNER] Failed to start %q: %v", command, err)
		return err
	}

	r.mu.Lock()
	r.cmd = cmd
	r.ptmx = ptmx
	r.stop = make(chan struct{})
	stop := r.stop
	r.mu.Unlock()

	log.Printf("[RUNNER] Started %q (pid %d)", command, cmd.Process.Pid)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer ptmx.Close()
		r.readLoop(ptmx, stop)
	}()

	go func() {
		err := cmd.Wait()
		if r.OnExit != nil {
			r.OnExit(err)
		}
	}()
	return nil
}

// readLoop drains the pty line by line until EOF or stop.
func (r *Runner) readLoop(ptmx *os.File, stop chan struct{}) {
	scanner := bufio.NewScanner(ptmx)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-stop:
			return
		default:
		}
		if r.OnLine != nil {
			r.OnLine(stripEscapes(scanner.Text()))
		}
	}
	// A pty read error after process exit is normal teardown.
	if err := scanner.Err(); err != nil && err != io.EOF {
		select {
		case <-stop:
		default:
			log.Printf("[RUNNER] Read error: %v", err)
		}
	}
}

// Resize propagates a new size to the running pty, if any.
func (r *Runner) Resize(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ptmx != nil {
		pty.Setsize(r.ptmx, &pty.Winsize{
			Rows: uint16(rows),
			Cols: uint16(cols),
		})
	}
}

// Stop terminates the running command and waits for the reader to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stop == nil {
		r.mu.Unlock()
		return
	}
	close(r.stop)
	r.stop = nil
	if r.ptmx != nil {
		r.ptmx.Close()
		r.ptmx = nil
	}
	if r.cmd != nil && r.cmd.Process != nil {
		r.cmd.Process.Signal(syscall.SIGTERM)
	}
	r.cmd = nil
	r.mu.Unlock()

	r.wg.Wait()
}

// stripEscapes removes CSI, OSC and other escape sequences plus stray
// control bytes, leaving plain printable text.
func stripEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != 0x1b {
			if r == '\t' {
				b.WriteRune(' ')
				continue
			}
			if r >= 0x20 && r != 0x7f {
				b.WriteRune(r)
			}
			continue
		}

		// Escape sequence introducer.
		if i+1 >= len(runes) {
			break
		}
		switch runes[i+1] {
		case '[': // CSI: parameters then a final byte in 0x40-0x7e
			j := i + 2
			for j < len(runes) && (runes[j] < 0x40 || runes[j] > 0x7e) {
				j++
			}
			i = j
		case ']': // OSC: terminated by BEL or ST
			j := i + 2
			for j < len(runes) {
				if runes[j] == 0x07 {
					break
				}
				if runes[j] == 0x1b && j+1 < len(runes) && runes[j+1] == '\\' {
					j++
					break
				}
				j++
			}
			i = j
		case '(', ')', '*', '+': // charset designation: one more byte
			i += 2
		default: // two-byte escape
			i++
		}
	}
	return b.String()
}
