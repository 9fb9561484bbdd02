// Package main implements the storm CLI, an interactive shell over an
// in-process sharded key-value store.
//
// The CLI reads line-oriented commands from stdin and answers each one on
// stdout in a single-line JSON shape, which keeps sessions scriptable:
//
//	$ ./cli
//	Store CLI started. Commands: PUT, GET, DEL, LIST, CLEAR, HELP, HISTORY, EXIT
//	> PUT user:1 alice
//	{ "success": true }
//	> GET user:1
//	{ "success": true, "value": "alice" }
//	> GET user:2
//	{ "success": false, "error": "Key not found" }
//	> LIST
//	{ "shard_0": { "user:1": "alice" } }
//	> EXIT
//
// Commands are uppercase; anything else is answered with an unknown-command
// error. The store is sized from the same STORM_SHARDS and
// STORM_SHARD_CAPACITY variables the server uses, so a CLI session can
// reproduce server eviction behavior exactly.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/currentlycrafting/S.T.O.R.M/internal/store"
)

// logFatal is a variable to allow mocking log.Fatal in tests.
var logFatal = log.Fatalf

// maxHistory bounds the command history window.
const maxHistory = 50

const banner = "Store CLI started. Commands: PUT, GET, DEL, LIST, CLEAR, HELP, HISTORY, EXIT"

const helpText = `Commands:
  PUT key value   Store a value under a key
  GET key         Read a key
  DEL key         Delete a key
  LIST            Show every shard's contents
  CLEAR           Remove everything
  HISTORY         Show recent commands
  HELP            Show this message
  EXIT            Quit`

// repl is an interactive session over a store: it reads commands from in,
// writes rendered responses to out, and remembers the last maxHistory
// command lines.
type repl struct {
	store   *store.Store
	in      io.Reader
	out     io.Writer
	history []string
}

func newREPL(st *store.Store, in io.Reader, out io.Writer) *repl {
	return &repl{
		store: st,
		in:    in,
		out:   out,
	}
}

// run drives the session until EXIT or end of input. Blank lines are
// skipped and never recorded in the history.
func (r *repl) run() {
	fmt.Fprintln(r.out, banner)

	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// Recorded before execution, so HISTORY lists itself.
		r.record(line)

		output, quit := r.execute(line)
		if output != "" {
			fmt.Fprintln(r.out, output)
		}
		if quit {
			break
		}
	}
}

// record appends line to the history, dropping the oldest entry once the
// window is full.
func (r *repl) record(line string) {
	r.history = append(r.history, line)
	if len(r.history) > maxHistory {
		r.history = slices.Delete(r.history, 0, 1)
	}
}

// execute runs a single command line and returns the rendered response and
// whether the session should end. Tokens beyond the ones a command needs
// are ignored.
func (r *repl) execute(line string) (string, bool) {
	fields := strings.Fields(line)

	switch fields[0] {
	case "PUT":
		if len(fields) < 3 {
			return `{ "success": false, "error": "PUT requires key and value" }`, false
		}
		r.store.Put(fields[1], fields[2])
		return `{ "success": true }`, false

	case "GET":
		if len(fields) < 2 {
			return `{ "success": false, "error": "GET requires key" }`, false
		}
		value, ok := r.store.Get(fields[1])
		if !ok {
			return `{ "success": false, "error": "Key not found" }`, false
		}
		return fmt.Sprintf(`{ "success": true, "value": %q }`, value), false

	case "DEL":
		if len(fields) < 2 {
			return `{ "success": false, "error": "DEL requires key" }`, false
		}
		if !r.store.Delete(fields[1]) {
			return `{ "success": false, "error": "Key not found" }`, false
		}
		return `{ "success": true }`, false

	case "LIST":
		return r.renderList(), false

	case "CLEAR":
		r.store.Clear()
		return `{ "success": true }`, false

	case "HELP":
		return helpText, false

	case "HISTORY":
		return r.renderHistory(), false

	case "EXIT":
		return "", true

	default:
		return `{ "error": "Unknown command" }`, false
	}
}

// renderList prints one line per shard, entries most recently used first.
// Empty shards are listed too, so the output always names every shard.
func (r *repl) renderList() string {
	snapshot := r.store.Snapshot()
	lines := make([]string, 0, len(snapshot))
	for i, pairs := range snapshot {
		var b strings.Builder
		fmt.Fprintf(&b, "{ %q: { ", fmt.Sprintf("shard_%d", i))
		for j, p := range pairs {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%q: %q", p.Key, p.Value)
		}
		if len(pairs) > 0 {
			b.WriteString(" } }")
		} else {
			b.WriteString("} }")
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

func (r *repl) renderHistory() string {
	var b strings.Builder
	b.WriteString(`{ "history": [ `)
	for i, cmd := range r.history {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q", cmd)
	}
	b.WriteString(" ] }")
	return b.String()
}

func main() {
	shardCount := getenvInt("STORM_SHARDS", store.DefaultShardCount)
	capacity := getenvInt("STORM_SHARD_CAPACITY", store.DefaultShardCapacity)

	st, err := store.New(capacity, shardCount)
	if err != nil {
		logFatal("invalid store configuration: %v", err)
		return
	}

	newREPL(st, os.Stdin, os.Stdout).run()
}

// getenvInt retrieves an integer environment variable with a default
// fallback, terminating on a value that does not parse.
func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logFatal("invalid %s: %v", k, err)
		return def
	}
	return n
}
