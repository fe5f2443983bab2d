package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio-contact/internal/config"
	"github.com/Zachkp/portfolio-contact/internal/dispatch"
	"github.com/Zachkp/portfolio-contact/internal/envclass"
	"github.com/Zachkp/portfolio-contact/internal/site"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func classifyCmd() *cobra.Command {
	var (
		ua         string
		standalone bool
	)
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a User-Agent the way the server does",
		RunE: func(cmd *cobra.Command, args []string) error {
			sig := envclass.Signature{UserAgent: ua, Standalone: standalone}
			p := envclass.Classify(sig)
			rule, _ := envclass.MatchWebView(sig)
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"profile":      p,
				"kind":         p.Kind(),
				"webview_rule": rule,
			})
		},
	}
	cmd.Flags().StringVar(&ua, "ua", "", "User-Agent string")
	cmd.Flags().BoolVar(&standalone, "standalone", false, "page runs in standalone display mode")
	return cmd
}

// profileByName maps the --profile shorthand to a classifier verdict.
func profileByName(name string) (envclass.Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "desktop", "":
		return envclass.Profile{}, nil
	case "mobile", "android":
		return envclass.Profile{Mobile: true}, nil
	case "apple", "ios", "iphone":
		return envclass.Profile{Mobile: true, Apple: true}, nil
	case "webview":
		return envclass.Profile{WebView: true}, nil
	default:
		return envclass.Profile{}, fmt.Errorf("unknown profile %q (want desktop, mobile, apple or webview)", name)
	}
}

// defaultRecipient picks the owner's address for ch.
func defaultRecipient(owner site.Profile, ch dispatch.Channel) string {
	switch ch {
	case dispatch.SMS:
		return owner.SMSNumber
	case dispatch.WhatsApp:
		return owner.WhatsAppNumber
	default:
		return owner.Email
	}
}

func composeCmd() *cobra.Command {
	var (
		channel, profile, ua string
		to, subject, body    string
		blocked              bool
	)
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Dry-run a contact handoff and print what the browser would be told",
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := dispatch.ParseChannel(channel)
			if err != nil {
				return err
			}

			env, err := profileByName(profile)
			if err != nil {
				return err
			}
			if ua != "" {
				env = envclass.Classify(envclass.Signature{UserAgent: ua})
			}

			if to == "" {
				owner, err := loadOwner(config.Load())
				if err != nil {
					return err
				}
				to = defaultRecipient(owner, ch)
			}

			host := &dispatch.RecordingHost{BlockOpen: blocked}
			h := dispatch.Dispatch(cmd.Context(), dispatch.NewIntent(ch, to, subject, body), env, host)

			return printJSON(cmd.OutOrStdout(), map[string]any{
				"channel":     h.Channel.String(),
				"strategy":    h.Strategy,
				"environment": h.Environment,
				"uri":         h.URI,
				"fell_back":   h.FellBack,
				"calls":       host.Calls(),
			})
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "email", "email, sms or whatsapp")
	cmd.Flags().StringVar(&profile, "profile", "desktop", "desktop, mobile, apple or webview")
	cmd.Flags().StringVar(&ua, "ua", "", "classify this User-Agent instead of using --profile")
	cmd.Flags().StringVar(&to, "to", "", "recipient (default: the site owner's address for the channel)")
	cmd.Flags().StringVar(&subject, "subject", "", "email subject")
	cmd.Flags().StringVar(&body, "body", "", "message body")
	cmd.Flags().BoolVar(&blocked, "blocked", false, "simulate a blocked pop-up")
	return cmd
}

func resumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Print the resume link",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := loadOwner(config.Load())
			if err != nil {
				return err
			}
			if owner.ResumeURL == "" {
				return errors.New("no resume_url in site profile")
			}
			fmt.Fprintln(cmd.OutOrStdout(), owner.ResumeURL)
			return nil
		},
	}
}
