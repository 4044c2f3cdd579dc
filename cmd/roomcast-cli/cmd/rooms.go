package cmd

import (
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Inspect rooms and presence",
}

var roomsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known rooms with their member counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		var response struct {
			Rooms []struct {
				Name   string `json:"name"`
				Online int    `json:"online"`
			} `json:"rooms"`
			Count int `json:"count"`
		}
		if err := getJSON("/api/v1/rooms", &response); err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ROOM\tONLINE")
		for _, r := range response.Rooms {
			fmt.Fprintf(w, "%s\t%d\n", r.Name, r.Online)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Printf("\n%d room(s)\n", response.Count)
		return nil
	},
}

var roomsPresenceCmd = &cobra.Command{
	Use:   "presence <room>",
	Short: "Show the member count for one room",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var response struct {
			Room   string `json:"room"`
			Online int    `json:"online"`
		}
		path := "/api/v1/rooms/" + url.PathEscape(args[0]) + "/presence"
		if err := getJSON(path, &response); err != nil {
			return err
		}

		fmt.Printf("%s: %d online\n", response.Room, response.Online)
		return nil
	},
}

func init() {
	roomsCmd.AddCommand(roomsListCmd)
	roomsCmd.AddCommand(roomsPresenceCmd)
	rootCmd.AddCommand(roomsCmd)
}
