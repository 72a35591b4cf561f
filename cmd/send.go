package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/lithammer/dedent"
	"github.com/ryan-gang/smtp-client/internal/address"
	"github.com/ryan-gang/smtp-client/internal/cmdutil"
	"github.com/ryan-gang/smtp-client/internal/mail"
	"github.com/ryan-gang/smtp-client/internal/transport"
	internalutil "github.com/ryan-gang/smtp-client/internal/util"
	"github.com/ryan-gang/smtp-client/util"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func init() {
	rootCmd.AddCommand(sendCmd)
}

var (
	helpLong = `Sends one message through the configured SMTP relay and prints the
server's reply code. Recipient flags can be repeated and each value may hold
a comma separated list. Bcc recipients are delivered without a Bcc header
unless --keep-bcc is given.

Flags that are not set fall back to the configured defaults.`

	helpExample = dedent.Dedent(`
		# Plain text mail using configured defaults
		smtp-client send --to alice@example.com --subject "Hi" --body "Hello"

		# HTML body from a file to several recipients
		smtp-client send --to "a@example.com,b@example.com" --cc c@example.com \
			--subject "Report" --body-file report.html --html

		# One-off relay without TLS
		smtp-client send --server 127.0.0.1 --port 2525 --tls=false \
			--from me@example.com --to you@example.com --subject s --body b`,
	)
)

func init() {
	addSendFlags(sendCmd.Flags())
	sendCmd.MarkFlagsMutuallyExclusive("body", "body-file")
}

func addSendFlags(f *pflag.FlagSet) {
	f.StringArray("to", nil, "Recipient addresses")
	f.StringArray("cc", nil, "Carbon copy addresses")
	f.StringArray("bcc", nil, "Blind carbon copy addresses")
	f.Bool("keep-bcc", false, "Keep a visible Bcc header")
	f.String("subject", "", "Subject line")
	f.String("body", "", "Message body")
	f.String("body-file", "", "Read the body from a file, - for stdin")
	f.Bool("html", false, "Send the body as text/html")
	f.String("from", "", "Sender address")
	f.String("server", "", "SMTP server host")
	f.Int("port", 0, "SMTP server port")
	f.Bool("tls", true, "Use TLS from the first byte")
	f.String("username", "", "SMTP username")
	f.String("password", "", "SMTP password")
	f.Duration("timeout", transport.DefaultTimeout, "Dial and command timeout")
	f.String("local-name", "", "Name sent in EHLO instead of localhost")
}

var sendCmd = &cobra.Command{
	Use:     "send",
	Short:   "Send an email",
	Long:    helpLong,
	Example: helpExample,
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := cmdutil.LoadProviderOrExit(cmd)
		if cfg == nil {
			os.Exit(1)
		}

		log, err := cmdutil.LoggerFromFlags(cmd)
		if err != nil {
			internalutil.LogError("opening log", err)
			os.Exit(1)
		}
		defer log.Close()

		req, err := requestFromFlags(cmd)
		if err != nil {
			internalutil.LogError("reading arguments", err)
			os.Exit(1)
		}

		timeout, _ := cmd.Flags().GetDuration("timeout")
		localName, _ := cmd.Flags().GetString("local-name")
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		sender := mail.NewSMTPMailSender(cfg,
			mail.WithLogger(log),
			mail.WithTransportOptions(
				transport.WithTimeout(timeout),
				transport.WithLocalName(localName),
			),
		)
		res, err := sender.Send(ctx, req)
		if err != nil {
			internalutil.LogError("sending mail", err)
			log.Close()
			os.Exit(1)
		}

		util.GreenBold.Println(res.Code)
	},
}

func requestFromFlags(cmd *cobra.Command) (mail.Request, error) {
	f := cmd.Flags()
	var req mail.Request

	req.Subject, _ = f.GetString("subject")
	req.HTML, _ = f.GetBool("html")
	req.KeepBcc, _ = f.GetBool("keep-bcc")

	if path, _ := f.GetString("body-file"); path != "" {
		body, err := readBody(path)
		if err != nil {
			return req, err
		}
		req.Body = body
	} else {
		req.Body, _ = f.GetString("body")
	}

	for name, dst := range map[string]*[]string{"to": &req.To, "cc": &req.Cc, "bcc": &req.Bcc} {
		values, _ := f.GetStringArray(name)
		for _, v := range values {
			*dst = append(*dst, address.Split(v)...)
		}
	}

	req.From = changedString(cmd, "from")
	req.Server = changedString(cmd, "server")
	req.Username = changedString(cmd, "username")
	req.Password = changedString(cmd, "password")
	if f.Changed("port") {
		port, _ := f.GetInt("port")
		req.Port = &port
	}
	if f.Changed("tls") {
		tls, _ := f.GetBool("tls")
		req.TLS = &tls
	}
	return req, nil
}

func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func readBody(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}
