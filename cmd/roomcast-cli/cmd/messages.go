package cmd

import (
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var messagesRoomFilter string

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Inspect recorded message history",
}

var messagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded messages in insertion order",
	Long: `List the messages the service has durably recorded, oldest first.

Examples:
  roomcast-cli messages list                 # Full history
  roomcast-cli messages list --room general  # One room's history`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/api/v1/messages"
		if messagesRoomFilter != "" {
			path += "?room=" + url.QueryEscape(messagesRoomFilter)
		}

		var response struct {
			Messages []struct {
				Room      string    `json:"room"`
				Author    string    `json:"author"`
				Content   string    `json:"content"`
				Timestamp time.Time `json:"timestamp"`
			} `json:"messages"`
			Count int `json:"count"`
		}
		if err := getJSON(path, &response); err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIMESTAMP\tROOM\tAUTHOR\tMESSAGE")
		for _, m := range response.Messages {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Timestamp.Format(time.RFC3339), m.Room, m.Author, m.Content)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Printf("\n%d message(s)\n", response.Count)
		return nil
	},
}

func init() {
	messagesListCmd.Flags().StringVar(&messagesRoomFilter, "room", "", "Only show messages for this room")
	messagesCmd.AddCommand(messagesListCmd)
	rootCmd.AddCommand(messagesCmd)
}
