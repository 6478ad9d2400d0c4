package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/gatewise/gatekeeper/internal/config"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Enroll face embeddings from image files",
	Long: `Enroll face embeddings for gate verification.

With --dir, every image file in the directory is enrolled; the file name
without extension becomes the identity key (e.g. cs21b001.jpg).
With --identity and --file, a single face is enrolled.`,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("dir", "", "Directory of <identity>.jpg files to bulk-enroll")
	enrollCmd.Flags().String("identity", "", "Identity key for single enrollment")
	enrollCmd.Flags().String("file", "", "Image file for single enrollment")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	st, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	engine := buildEngine(cfg, st)

	dir := mustGetString(cmd, "dir")
	identity := mustGetString(cmd, "identity")
	file := mustGetString(cmd, "file")

	if dir != "" {
		return enrollDir(ctx, engine, dir)
	}
	if identity == "" || file == "" {
		return fmt.Errorf("either --dir or both --identity and --file are required")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}
	if err := engine.Enroll(ctx, identity, data); err != nil {
		return fmt.Errorf("enrolling %s: %w", identity, err)
	}
	fmt.Printf("Enrolled %s\n", identity)
	return nil
}

type enroller interface {
	Enroll(ctx context.Context, identityKey string, image []byte) error
}

func enrollDir(ctx context.Context, engine enroller, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no image files in %s", dir)
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Enrolling faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("faces"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	var enrolled, failed int
	for _, name := range files {
		identity := strings.TrimSuffix(name, filepath.Ext(name))
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Printf("\nSkipping %s: %v\n", name, err)
			failed++
			_ = bar.Add(1)
			continue
		}
		if err := engine.Enroll(ctx, identity, data); err != nil {
			fmt.Printf("\nSkipping %s: %v\n", name, err)
			failed++
			_ = bar.Add(1)
			continue
		}
		enrolled++
		_ = bar.Add(1)
	}

	fmt.Printf("\nEnrolled %d identities", enrolled)
	if failed > 0 {
		fmt.Printf(" (%d failed)", failed)
	}
	fmt.Println()
	return nil
}
