package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/gatewise/gatekeeper/internal/config"
	"github.com/gatewise/gatekeeper/internal/kiosk"
	"github.com/gatewise/gatekeeper/internal/token"
)

var kioskCmd = &cobra.Command{
	Use:   "kiosk",
	Short: "Run the gate kiosk loop over a directory of frames",
	Long: `Run the kiosk state machine against frames replayed from a directory.

The directory stands in for the capture hardware: image files are face
frames, .txt files carry scanned QR content. Frames are replayed in
lexical order at the given interval.`,
	RunE: runKiosk,
}

func init() {
	rootCmd.AddCommand(kioskCmd)

	kioskCmd.Flags().String("frames", "", "Directory of frames to replay (required)")
	kioskCmd.Flags().Duration("interval", 2*time.Second, "Delay between frames")
	_ = kioskCmd.MarkFlagRequired("frames")
}

func runKiosk(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	st, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	registry, closeRegistry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	defer closeRegistry()

	engine := buildEngine(cfg, st)
	tokenService := token.NewService(registry, cfg.Token.TTL)

	framesDir := mustGetString(cmd, "frames")
	source, err := kiosk.NewDirFrameSource(framesDir)
	if err != nil {
		return err
	}

	interval, err := cmd.Flags().GetDuration("interval")
	if err != nil {
		return fmt.Errorf("flag error for --interval: %v", err)
	}

	session := kiosk.NewSession(engine, tokenService, kiosk.TextQRDecoder{},
		cfg.Kiosk.MinFaceInterval, cfg.Kiosk.HoldDuration)

	fmt.Printf("Kiosk started, replaying frames from %s\n", framesDir)

	for {
		frame, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			fmt.Println("All frames processed")
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading frame: %w", err)
		}

		event, err := session.Advance(ctx, frame)
		if err != nil {
			return fmt.Errorf("processing frame: %w", err)
		}
		printKioskEvent(event)

		time.Sleep(interval)
	}
}

func printKioskEvent(event kiosk.Event) {
	switch event.Kind {
	case kiosk.EventIdle:
		// nothing to report
	case kiosk.EventFaceMatched:
		fmt.Printf("Face matched: %s, scan your gate pass\n", event.IdentityKey)
	case kiosk.EventFaceNotRecognized:
		fmt.Printf("Face not recognized (%s)\n", event.Detail)
	case kiosk.EventTokenRejected:
		fmt.Printf("Gate pass rejected: %s\n", event.Detail)
	case kiosk.EventIdentityInconsistent:
		fmt.Printf("Gate pass belongs to %s, not to the matched face %s\n", event.Detail, event.IdentityKey)
	case kiosk.EventVerified:
		fmt.Printf("Verified: %s, gate open\n", event.IdentityKey)
	case kiosk.EventSessionReset:
		fmt.Println("Session reset, awaiting next face")
	}
}
