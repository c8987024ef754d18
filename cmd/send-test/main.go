// Command send-test sends the generic test template to one recipient
// through whatever delivery mode the current configuration resolves to.
// Useful for verifying provider credentials before a deploy.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/nartaq/forms-service/internal/config"
	"github.com/nartaq/forms-service/internal/notifier"
)

func main() {
	recipient := flag.String("to", "", "recipient email address (required)")
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	if *recipient == "" {
		fmt.Fprintln(os.Stderr, "usage: send-test -to recipient@example.com [-config path]")
		os.Exit(2)
	}

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sender, err := notifier.SelectSender(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize sender: %v", err)
	}
	mailer := notifier.New(sender, cfg.Mail)

	res, err := mailer.Send(ctx, notifier.TemplateTest, *recipient, map[string]interface{}{
		"mode": sender.Name(),
	})
	if err != nil {
		log.Fatalf("Send failed (%s mode): %v", sender.Name(), err)
	}
	fmt.Printf("Sent via %s, message id %s\n", sender.Name(), res.MessageID)
}
