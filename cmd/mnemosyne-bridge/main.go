// Command mnemosyne-bridge is a thin stdio-to-HTTP passthrough: it reads
// newline-delimited JSON-RPC requests from stdin, forwards each verbatim
// to a running mnemosyne server's /mcp endpoint, and writes the response
// back to stdout. It supplements the tool surface for stdio-only MCP
// clients that cannot speak HTTP directly (mirroring the role the
// Python proxy played for VS Code's stdio MCP client).
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/oveku/mnemosyne/internal/config"
)

func main() {
	url := os.Getenv("MNEMOSYNE_URL")
	if url == "" {
		url = fmt.Sprintf("http://localhost:%d/mcp", config.Load().Port)
	}

	client := &http.Client{Timeout: 30 * time.Second}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if err := forward(client, url, line, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "mnemosyne-bridge: %v\n", err)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "mnemosyne-bridge: reading stdin: %v\n", err)
		os.Exit(1)
	}
}

func forward(client *http.Client, url string, request []byte, out io.Writer) error {
	resp, err := client.Post(url, "application/json", bytes.NewReader(request))
	if err != nil {
		return fmt.Errorf("forwarding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	body = append(bytes.TrimRight(body, "\n"), '\n')
	_, err = out.Write(body)
	return err
}
