package main

import (
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pders01/panels/internal/browse"
	"github.com/pders01/panels/internal/comic"
	"github.com/pders01/panels/internal/config"
	"github.com/pders01/panels/internal/validation"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("panels %s\n", Version)
		fmt.Println("Web comic browser")
		fmt.Println("github.com/pders01/panels")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		paths, err := validation.NewPathHandler()
		if err != nil {
			log.Fatalf("Failed to generate config: %v", err)
		}
		configFile, err := paths.ConfigPath("")
		if err != nil {
			log.Fatalf("Failed to generate config: %v", err)
		}
		if err := config.GenerateDefaultConfig(configFile); err != nil {
			log.Fatalf("Failed to generate config: %v", err)
		}
		fmt.Printf("Generated default configuration at: %s\n", configFile)
	},
}

var pageCmd = &cobra.Command{
	Use:   "page [N]",
	Short: "List the comics of a page, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page := 1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid page %q", args[0])
			}
			page = n
		}

		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		s.ctrl.LoadLatestAndFirstPage(ctx)
		if err := stateError(s.ctrl.State()); err != nil {
			return err
		}
		if page > 1 {
			s.ctrl.LoadPage(ctx, page)
		}

		st := s.ctrl.State()
		if st.CurrentPage != page {
			return fmt.Errorf("page %d out of range (1-%d)", page, st.TotalPages)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s (page %d of %d)\n", st.RangeText, st.CurrentPage, st.TotalPages)
		printComics(w, st.Items)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show N|latest",
	Short: "Show a single comic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		num, err := parseTarget(args[0])
		if err != nil {
			return err
		}

		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.Close()

		var c comic.Comic
		if num == 0 {
			c, err = s.client.FetchLatest(cmd.Context())
		} else {
			c, err = s.client.FetchByNumber(cmd.Context(), num)
		}
		if err != nil {
			return err
		}
		printComic(cmd.OutOrStdout(), c, s.client.BaseURL())
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Find comics by number or title",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		s.ctrl.LoadLatestAndFirstPage(ctx)
		if err := stateError(s.ctrl.State()); err != nil {
			return err
		}

		progress := cmd.ErrOrStderr()
		unsubscribe := s.ctrl.Subscribe(func(st browse.State) {
			if st.Progress != "" {
				fmt.Fprintf(progress, "\r%s", st.Progress)
			}
		})
		s.ctrl.Search(ctx, strings.Join(args, " "))
		unsubscribe()

		st := s.ctrl.State()
		if st.Progress != "" || len(st.Items) > 0 {
			fmt.Fprintln(progress)
		}
		if err := stateError(st); err != nil {
			return err
		}
		printComics(cmd.OutOrStdout(), st.Items)
		return nil
	},
}

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "List saved favorites",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(true)
		if err != nil {
			return err
		}
		defer s.Close()

		favs, err := s.store.GetFavorites()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(favs) == 0 {
			fmt.Fprintln(w, "No favorites yet")
			return nil
		}
		for _, f := range favs {
			image := ""
			if f.HasImage {
				image = " [image]"
			}
			fmt.Fprintf(w, "★ #%d %s (saved %s)%s\n", f.Num(), f.Comic.Title, f.SavedAt.Local().Format("2006-01-02"), image)
		}
		return nil
	},
}

// parseTarget returns 0 for "latest".
func parseTarget(arg string) (int, error) {
	if strings.EqualFold(arg, "latest") {
		return 0, nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid comic %q: want a positive number or 'latest'", arg)
	}
	return n, nil
}

func stateError(st browse.State) error {
	if st.Err == nil {
		return nil
	}
	return st.Err
}

func printComics(w io.Writer, items []comic.Comic) {
	for _, c := range items {
		date := ""
		if d, ok := c.Date(); ok {
			date = d.Format("2006-01-02")
		}
		fmt.Fprintf(w, "#%-5d %-10s %s\n", c.Num, date, c.Title)
	}
}

func printComic(w io.Writer, c comic.Comic, baseURL string) {
	fmt.Fprintf(w, "#%d %s\n", c.Num, c.Title)
	if d, ok := c.Date(); ok {
		fmt.Fprintln(w, d.Format("January 2, 2006"))
	}
	if c.Alt != "" {
		fmt.Fprintf(w, "\n%s\n", c.Alt)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Comic:       %s\n", c.URL(baseURL))
	if c.Img != "" {
		fmt.Fprintf(w, "Image:       %s\n", c.Img)
	}
	fmt.Fprintf(w, "Explanation: %s\n", c.ExplainURL())
}
