package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"chordring/internal/client"
	"chordring/internal/domain"
)

func main() {
	node := flag.String("node", "127.0.0.1:5000", "address of the entry-point node")
	timeout := flag.Duration("timeout", 5*time.Second, "request timeout")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	pool := client.New(*timeout, *timeout)
	defer pool.CloseAll()

	if args := flag.Args(); len(args) > 0 {
		os.Exit(runOneShot(pool, *node, *timeout, args))
	}

	runREPL(pool, *node, *timeout)
}

// runOneShot executes a single put/get/find-successor subcommand against
// node and returns the process exit code: 0 on RPC success, non-zero on
// transport/RPC failure or a malformed invocation (§6).
func runOneShot(pool *client.Pool, node string, timeout time.Duration, args []string) int {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	switch cmd := args[0]; cmd {
	case "put":
		if len(args) != 3 {
			fmt.Fprintln(os.Stderr, "usage: chordring-client -node ADDR put KEY VALUE")
			return 1
		}
		ok, err := pool.Put(ctx, node, args[1], args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "put failed: %v\n", err)
			return 1
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "put failed: not ok")
			return 1
		}
		fmt.Println("ok")
		return 0

	case "get":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "usage: chordring-client -node ADDR get KEY")
			return 1
		}
		value, found, err := pool.Get(ctx, node, args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "get failed: %v\n", err)
			return 1
		}
		if !found {
			fmt.Fprintf(os.Stderr, "key not found: %s\n", args[1])
			return 1
		}
		fmt.Println(value)
		return 0

	case "find-successor":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "usage: chordring-client -node ADDR find-successor ID")
			return 1
		}
		raw, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid id: %v\n", err)
			return 1
		}
		succ, err := pool.FindSuccessor(ctx, node, domain.ID(raw))
		if err != nil {
			fmt.Fprintf(os.Stderr, "find-successor failed: %v\n", err)
			return 1
		}
		fmt.Printf("%s %s\n", succ.ID.ToHexString(true), succ.Addr)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand: %s\n", cmd)
		return 1
	}
}

// runREPL drives the interactive liner-based prompt used when no
// subcommand is given on the command line.
func runREPL(pool *client.Pool, node string, timeout time.Duration) {
	currentAddr := node
	fmt.Printf("chordring interactive client. connected to %s\n", currentAddr)
	fmt.Println("commands: put/get/find-successor/use/exit")

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt(fmt.Sprintf("chordring[%s]> ", currentAddr))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println("aborted")
				continue
			}
			break
		}
		line.AppendHistory(input)

		args := strings.Fields(strings.TrimSpace(input))
		if len(args) == 0 {
			continue
		}
		cmd := args[0]

		ctx, cancel := context.WithTimeout(context.Background(), timeout)

		switch cmd {
		case "put":
			if len(args) < 3 {
				fmt.Println("usage: put <key> <value>")
				cancel()
				continue
			}
			start := time.Now()
			ok, err := pool.Put(ctx, currentAddr, args[1], args[2])
			latency := time.Since(start)
			if err != nil {
				fmt.Printf("put failed: %v | latency=%s\n", err, latency)
			} else {
				fmt.Printf("put ok=%v | latency=%s\n", ok, latency)
			}

		case "get":
			if len(args) < 2 {
				fmt.Println("usage: get <key>")
				cancel()
				continue
			}
			start := time.Now()
			value, found, err := pool.Get(ctx, currentAddr, args[1])
			latency := time.Since(start)
			switch {
			case err != nil:
				fmt.Printf("get failed: %v | latency=%s\n", err, latency)
			case !found:
				fmt.Printf("key not found: %s | latency=%s\n", args[1], latency)
			default:
				fmt.Printf("get value=%s | latency=%s\n", value, latency)
			}

		case "find-successor":
			if len(args) < 2 {
				fmt.Println("usage: find-successor <id>")
				cancel()
				continue
			}
			raw, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				fmt.Printf("invalid id: %v\n", err)
				cancel()
				continue
			}
			start := time.Now()
			succ, err := pool.FindSuccessor(ctx, currentAddr, domain.ID(raw))
			latency := time.Since(start)
			if err != nil {
				fmt.Printf("find-successor failed: %v | latency=%s\n", err, latency)
			} else {
				fmt.Printf("successor=%s (%s) | latency=%s\n", succ.ID.ToHexString(true), succ.Addr, latency)
			}

		case "use":
			if len(args) < 2 {
				fmt.Println("usage: use <addr>")
				cancel()
				continue
			}
			currentAddr = args[1]
			fmt.Printf("switched connection to %s\n", currentAddr)

		case "exit", "quit":
			fmt.Println("bye")
			cancel()
			return

		default:
			fmt.Printf("unknown command: %s\n", cmd)
		}

		cancel()
	}
}
