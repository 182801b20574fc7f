package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	solcconfig "github.com/fabelx/go-solc-select/pkg/config"
	"github.com/fabelx/go-solc-select/pkg/installer"
	"github.com/fabelx/go-solc-select/pkg/versions"
	"github.com/rs/zerolog"

	"github.com/solterm/solterm/internal/contract"
	"github.com/solterm/solterm/internal/logging"
)

// Artifact is one compiled contract: its ABI (parsed and raw) and the
// 0x-prefixed creation bytecode. Immutable once produced.
type Artifact struct {
	Name     string          `json:"name"`
	ABI      contract.ABI    `json:"-"`
	ABIJSON  json.RawMessage `json:"abi"`
	Bytecode string          `json:"bytecode"`
}

// Result is the compiler service response: success flag, contracts by name,
// and compiler diagnostics when compilation failed.
type Result struct {
	Success   bool                 `json:"success"`
	Contracts map[string]*Artifact `json:"contracts"`
	Errors    []string             `json:"errors,omitempty"`
}

// Contract picks a contract from the result: by name when given, otherwise
// the only contract in the file.
func (r *Result) Contract(name string) (*Artifact, error) {
	if name != "" {
		a, ok := r.Contracts[name]
		if !ok {
			return nil, fmt.Errorf("contract %q not found in compiled output", name)
		}
		return a, nil
	}
	if len(r.Contracts) == 1 {
		for _, a := range r.Contracts {
			return a, nil
		}
	}
	names := make([]string, 0, len(r.Contracts))
	for n := range r.Contracts {
		names = append(names, n)
	}
	return nil, fmt.Errorf("source defines %d contracts (%s) — pick one with --contract",
		len(r.Contracts), strings.Join(names, ", "))
}

// Compiler shells out to solc. With a pinned version it resolves the binary
// through the solc-select artifact store, installing on first use; without
// one it uses whatever `solc` is on PATH.
type Compiler struct {
	version string
	log     zerolog.Logger
}

// New creates a compiler. version may be empty.
func New(version string) *Compiler {
	return &Compiler{version: version, log: logging.NewLogger("compiler")}
}

// Compile compiles a .sol file. Infrastructure problems (no solc binary,
// unreadable file) return an error; compiler diagnostics come back inside
// the Result with Success=false.
func (c *Compiler) Compile(path string) (*Result, error) {
	if !strings.HasSuffix(path, ".sol") {
		return nil, fmt.Errorf("not a Solidity source file: %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cannot read source: %w", err)
	}

	solc, err := c.findSolc()
	if err != nil {
		return nil, err
	}
	c.log.Debug().Str("solc", solc).Str("source", path).Msg("compiling")

	cmd := exec.Command(solc, "--combined-json", "abi,bin", path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// Non-zero exit means solidity diagnostics, not an infra failure.
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return &Result{Success: false, Errors: strings.Split(msg, "\n")}, nil
	}

	return parseCombinedJSON(stdout.Bytes())
}

// findSolc resolves the compiler binary. A pinned version wins; otherwise
// fall back to PATH.
func (c *Compiler) findSolc() (string, error) {
	if c.version == "" {
		path, err := exec.LookPath("solc")
		if err != nil {
			return "", fmt.Errorf("solc not found on PATH — install it or pin a version in config")
		}
		return path, nil
	}

	if _, ok := versions.GetInstalled()[c.version]; !ok {
		c.log.Info().Str("version", c.version).Msg("installing solc")
		if err := installer.InstallSolc(c.version); err != nil {
			return "", fmt.Errorf("installing solc %s: %w", c.version, err)
		}
	}
	name := "solc-" + c.version
	path := filepath.Join(solcconfig.SolcArtifacts, name, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("solc %s not found after install: %w", c.version, err)
	}
	return path, nil
}

// parseCombinedJSON decodes `solc --combined-json abi,bin` output. Contract
// keys come back as "path/to/file.sol:Name"; only the bare name is kept. The
// abi field is a string in pre-0.8 compilers and a JSON array in later ones.
func parseCombinedJSON(output []byte) (*Result, error) {
	var combined struct {
		Contracts map[string]struct {
			ABI json.RawMessage `json:"abi"`
			Bin string          `json:"bin"`
		} `json:"contracts"`
	}
	if err := json.Unmarshal(output, &combined); err != nil {
		return nil, fmt.Errorf("unexpected solc output: %w", err)
	}

	res := &Result{Success: true, Contracts: make(map[string]*Artifact)}
	for key, entry := range combined.Contracts {
		name := key
		if i := strings.LastIndex(key, ":"); i >= 0 {
			name = key[i+1:]
		}

		abiJSON := entry.ABI
		if len(abiJSON) > 0 && abiJSON[0] == '"' {
			var unquoted string
			if err := json.Unmarshal(abiJSON, &unquoted); err != nil {
				return nil, fmt.Errorf("contract %s: unreadable abi: %w", name, err)
			}
			abiJSON = json.RawMessage(unquoted)
		}

		abi, err := contract.ParseABI(abiJSON)
		if err != nil {
			return nil, fmt.Errorf("contract %s: %w", name, err)
		}

		bytecode := entry.Bin
		if bytecode != "" && !strings.HasPrefix(bytecode, "0x") {
			bytecode = "0x" + bytecode
		}

		res.Contracts[name] = &Artifact{
			Name:     name,
			ABI:      abi,
			ABIJSON:  abiJSON,
			Bytecode: bytecode,
		}
	}
	if len(res.Contracts) == 0 {
		return nil, fmt.Errorf("solc produced no contracts")
	}
	return res, nil
}
