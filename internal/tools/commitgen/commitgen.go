// Package commitgen computes case, target and guess commitments for setup
// and play. Operators run it when authoring cases and scenes; players run
// it to produce the digest they submit during the commit phase.
package commitgen

import (
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/louisbranch/zkgames/internal/commitment"
	"github.com/louisbranch/zkgames/internal/detective/domain"
)

// Modes accepted by the commit generator.
const (
	ModeCase   = "case"
	ModeTarget = "target"
	ModeGuess  = "guess"
)

// Config holds configuration for commitment generation.
type Config struct {
	Mode string

	// Case fields.
	Suspect uint
	Weapon  uint
	Room    uint

	// Target and guess fields.
	X uint
	Y uint

	// Binder is the player identity mixed into guess commitments.
	Binder string

	// Salt is an optional hex salt; a random salt is drawn when empty.
	Salt string
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Mode: ModeCase}
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "commitment kind: case, target or guess")
	fs.UintVar(&cfg.Suspect, "suspect", 0, "suspect id (case mode)")
	fs.UintVar(&cfg.Weapon, "weapon", 0, "weapon id (case mode)")
	fs.UintVar(&cfg.Room, "room", 0, "room id (case mode)")
	fs.UintVar(&cfg.X, "x", 0, "x coordinate (target and guess modes)")
	fs.UintVar(&cfg.Y, "y", 0, "y coordinate (target and guess modes)")
	fs.StringVar(&cfg.Binder, "player", "", "player identity bound into the digest (guess mode)")
	fs.StringVar(&cfg.Salt, "salt", "", "hex salt; random when omitted")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run computes the commitment and writes the digest plus salt to out.
func Run(cfg Config, out io.Writer, reader io.Reader) error {
	if out == nil {
		return errors.New("output is required")
	}
	if reader == nil {
		reader = rand.Reader
	}

	salt, err := resolveSalt(cfg.Salt, reader)
	if err != nil {
		return err
	}

	var digest commitment.Digest
	switch cfg.Mode {
	case ModeCase:
		accusation := domain.Accusation{
			Suspect: uint32(cfg.Suspect),
			Weapon:  uint32(cfg.Weapon),
			Room:    uint32(cfg.Room),
			Salt:    salt,
		}
		if err := accusation.Validate(); err != nil {
			return err
		}
		digest = accusation.Digest()
	case ModeTarget:
		digest = commitment.Commit([]uint32{uint32(cfg.X), uint32(cfg.Y)}, salt, "")
	case ModeGuess:
		if cfg.Binder == "" {
			return errors.New("guess mode requires -player")
		}
		digest = commitment.Commit([]uint32{uint32(cfg.X), uint32(cfg.Y)}, salt, cfg.Binder)
	default:
		return fmt.Errorf("unknown mode %q", cfg.Mode)
	}

	if _, err := fmt.Fprintf(out, "commitment=%s\nsalt=%x\n", digest, salt[:]); err != nil {
		return err
	}
	return nil
}

func resolveSalt(value string, reader io.Reader) (commitment.Salt, error) {
	if value != "" {
		return commitment.ParseSalt(value)
	}
	var salt commitment.Salt
	if _, err := io.ReadFull(reader, salt[:]); err != nil {
		return commitment.Salt{}, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}
