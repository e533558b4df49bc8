// Command amuletctl is a small operator CLI around the amulet.dev/core
// packages: replica identity generation, per-suite keypair generation,
// content-address computation, and frame inspection. It mirrors the
// teacher pack's cmd/xdao-catf: a flag-based subcommand dispatcher
// returning a process exit code, with all output written to the passed
// writers so run() stays testable without touching os.Stdout directly.
package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"amulet.dev/core/cid"
	"amulet.dev/core/kernel"
	"amulet.dev/core/keys"
	"amulet.dev/core/replicaid"
	"amulet.dev/core/suite"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "replica":
		return cmdReplica(args[1:], out, errOut)
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "cid":
		return cmdCID(args[1:], out, errOut)
	case "inspect":
		return cmdInspect(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "amuletctl: Amulet-Core operator CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  amuletctl replica new")
	fmt.Fprintln(w, "  amuletctl key gen --suite classic|fips|pqc|hybrid")
	fmt.Fprintln(w, "  amuletctl key store init [--dir DIR] [--seed-hex HEX] <replica>")
	fmt.Fprintln(w, "  amuletctl key store derive [--dir DIR] <replica> <purpose>")
	fmt.Fprintln(w, "  amuletctl key store export [--dir DIR] <replica> [purpose]")
	fmt.Fprintln(w, "  amuletctl key store list [--dir DIR]")
	fmt.Fprintln(w, "  amuletctl cid <file>")
	fmt.Fprintln(w, "  amuletctl inspect entity|capability|event <file>")
}

func cmdReplica(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("replica", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if len(args) == 0 || args[0] != "new" {
		fmt.Fprintln(errOut, "usage: amuletctl replica new")
		return 2
	}
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	id := replicaid.New()
	fmt.Fprintln(out, id.String())
	return 0
}

func cmdKey(args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: amuletctl key gen|store ...")
		return 2
	}
	if args[0] == "store" {
		return cmdKeyStore(args[1:], out, errOut)
	}
	if args[0] != "gen" {
		fmt.Fprintln(errOut, "usage: amuletctl key gen --suite classic|fips|pqc|hybrid")
		return 2
	}
	fs := flag.NewFlagSet("key gen", flag.ContinueOnError)
	fs.SetOutput(errOut)
	suiteName := fs.String("suite", "classic", "classic|fips|pqc|hybrid")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	switch *suiteName {
	case "classic", "hybrid":
		pub, priv, err := suite.GenerateClassicKeypair(rand.Reader)
		if err != nil {
			fmt.Fprintf(errOut, "generate keypair: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "public=%s\n", hex.EncodeToString(pub))
		fmt.Fprintf(out, "private=%s\n", hex.EncodeToString(priv))
		return 0
	case "fips":
		pub, priv, err := suite.GenerateFIPSKeypair(rand.Reader)
		if err != nil {
			fmt.Fprintf(errOut, "generate keypair: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "public=%s\n", hex.EncodeToString(pub))
		fmt.Fprintf(out, "private_d=%s\n", hex.EncodeToString(priv.D.Bytes()))
		return 0
	case "pqc":
		pub, priv, err := suite.GeneratePQCKeypair(rand.Reader)
		if err != nil {
			fmt.Fprintf(errOut, "generate keypair: %v\n", err)
			return 1
		}
		pubBytes, err := suite.PublicKeyBytes(pub)
		if err != nil {
			fmt.Fprintf(errOut, "marshal public key: %v\n", err)
			return 1
		}
		privBytes, err := priv.MarshalBinary()
		if err != nil {
			fmt.Fprintf(errOut, "marshal private key: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "public=%s\n", hex.EncodeToString(pubBytes))
		fmt.Fprintf(out, "private=%s\n", hex.EncodeToString(privBytes))
		return 0
	default:
		fmt.Fprintf(errOut, "unknown suite: %s\n", *suiteName)
		return 2
	}
}

func cmdKeyStore(args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: amuletctl key store init|derive|export|list ...")
		return 2
	}
	sub, rest := args[0], args[1:]

	fs := flag.NewFlagSet("key store "+sub, flag.ContinueOnError)
	fs.SetOutput(errOut)
	dir := fs.String("dir", "", "key store directory (default: ~/.amulet/keys)")
	seedHex := fs.String("seed-hex", "", "explicit 32-byte hex seed (init only; random if omitted)")
	if err := fs.Parse(rest); err != nil {
		return 2
	}

	ks, err := keys.OpenKeyStore(*dir)
	if err != nil {
		fmt.Fprintf(errOut, "open key store: %v\n", err)
		return 1
	}

	switch sub {
	case "init":
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: amuletctl key store init [--dir DIR] [--seed-hex HEX] <replica>")
			return 2
		}
		seed, err := resolveSeed(*seedHex)
		if err != nil {
			fmt.Fprintf(errOut, "seed: %v\n", err)
			return 1
		}
		holder, path, err := ks.InitializeRoot(fs.Arg(0), seed, false)
		if err != nil {
			fmt.Fprintf(errOut, "initialize root: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "holder=%s path=%s\n", holder, path)
		return 0
	case "derive":
		if fs.NArg() != 2 {
			fmt.Fprintln(errOut, "usage: amuletctl key store derive [--dir DIR] <replica> <purpose>")
			return 2
		}
		holder, path, err := ks.DerivePurposeKey(fs.Arg(0), fs.Arg(1), false)
		if err != nil {
			fmt.Fprintf(errOut, "derive purpose key: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "holder=%s path=%s\n", holder, path)
		return 0
	case "export":
		if fs.NArg() < 1 || fs.NArg() > 2 {
			fmt.Fprintln(errOut, "usage: amuletctl key store export [--dir DIR] <replica> [purpose]")
			return 2
		}
		purpose := ""
		if fs.NArg() == 2 {
			purpose = fs.Arg(1)
		}
		holder, err := ks.ExportHolder(fs.Arg(0), purpose)
		if err != nil {
			fmt.Fprintf(errOut, "export: %v\n", err)
			return 1
		}
		fmt.Fprintln(out, holder)
		return 0
	case "list":
		entries, err := ks.ListReplicas()
		if err != nil {
			fmt.Fprintf(errOut, "list: %v\n", err)
			return 1
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%s purposes=%v\n", e.Replica, e.Purposes)
		}
		return 0
	default:
		fmt.Fprintf(errOut, "unknown key store subcommand: %s\n", sub)
		return 2
	}
}

func resolveSeed(seedHex string) ([]byte, error) {
	if seedHex != "" {
		return keys.ParseSeedHex(seedHex)
	}
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}
	return seed, nil
}

func cmdCID(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("cid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: amuletctl cid <file>")
		return 2
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read: %v\n", err)
		return 1
	}
	id, err := cid.Compute(b)
	if err != nil {
		fmt.Fprintf(errOut, "compute cid: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, id.String())
	return 0
}

func cmdInspect(args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintln(errOut, "usage: amuletctl inspect entity|capability|event <file>")
		return 2
	}
	kind, path := args[0], args[1]
	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(errOut, "read: %v\n", err)
		return 1
	}

	switch kind {
	case "entity":
		e, err := kernel.DecodeEntity(b)
		if err != nil {
			fmt.Fprintf(errOut, "decode entity: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "id=%s version=%d lclock=%d body_len=%d trailer_len=%d\n",
			e.ID, e.Version, e.Lclock, len(e.Body), len(e.Trailer))
	case "capability":
		c, err := kernel.DecodeCapability(b)
		if err != nil {
			fmt.Fprintf(errOut, "decode capability: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "id=%s suite=%s target=%s rights=%d nonce=%d kind=%d\n",
			c.ID, c.SuiteTag, c.Target, c.Rights, c.Nonce, c.Kind)
	case "event":
		e, err := kernel.DecodeEvent(b)
		if err != nil {
			fmt.Fprintf(errOut, "decode event: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "id=%s suite=%s lclock=%d new_entities=%d updated_entities=%d\n",
			e.ID, e.SuiteTag, e.Lclock, len(e.NewEntities), len(e.UpdatedEntities))
	default:
		fmt.Fprintf(errOut, "unknown inspect kind: %s\n", kind)
		return 2
	}
	return 0
}
