// A minimal tour of the configuration schema: define a record, load a
// tree, watch the hook reject bad data.
package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	config "github.com/Mai-with-u/MaiBot"
)

type ServerConfig struct {
	Host     string              `toml:"host"`
	Port     int                 `toml:"port,required"`
	Backends []string            `toml:"backends"`
	Admins   map[string]struct{} `toml:"admins"`
}

func (c *ServerConfig) PostLoad() error {
	if c.Port < 1 || c.Port > 65535 {
		return &config.ValidationError{Field: "port", Reason: "must be a valid TCP port"}
	}
	return nil
}

const document = `
host = "0.0.0.0"
port = 8080
backends = ["10.0.0.1", "10.0.0.2"]
admins = ["root", "mai"]
`

func main() {
	s := config.New()
	if _, err := s.Define(&ServerConfig{Host: "localhost"}); err != nil {
		fmt.Fprintln(os.Stderr, "define:", err)
		os.Exit(1)
	}

	tree := make(map[string]any)
	if err := toml.Unmarshal([]byte(document), &tree); err != nil {
		fmt.Fprintln(os.Stderr, "parse:", err)
		os.Exit(1)
	}

	var srv ServerConfig
	if err := s.Load(tree, &srv); err != nil {
		fmt.Fprintln(os.Stderr, "load:", err)
		os.Exit(1)
	}
	fmt.Printf("listening on %s:%d with %d backends\n", srv.Host, srv.Port, len(srv.Backends))

	// A bad value is rejected by the hook, with the field path attached.
	if err := s.Load(map[string]any{"port": 99999}, &srv); err != nil {
		fmt.Println("rejected as expected:", err)
	}
}
