package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/service"
)

// deckFile is the YAML layout read by the import command.
type deckFile struct {
	Cards []service.NewCardInput `yaml:"cards"`
}

func newAddCmd(c *cli) *cobra.Command {
	var counter int

	cmd := &cobra.Command{
		Use:   "add <front> <back>",
		Short: "Add a card to the deck",
		Long: `Add a card at the first interval, due today.

Examples:
  scry add "der Hund" "the dog"
  scry add "die Katze" "the cat" --counter 3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDeck(cmd.Context(), func(ctx context.Context) error {
				card, err := c.cards.AddCard(ctx, service.NewCardInput{
					Front:   args[0],
					Back:    args[1],
					Counter: counter,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "Added card %s (%s)\n", card.Code, dueLabel(card))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&counter, "counter", 0, "successes needed before promotion (default: srs.threshold)")
	return cmd
}

func newImportCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <deck.yaml>",
		Short: "Import cards from a YAML deck",
		Long: `Import every card of a YAML deck in one transaction.

The deck lists cards under a top-level "cards" key:

  cards:
    - front: der Hund
      back: the dog
    - front: die Katze
      back: the cat
      counter: 3

Use "-" to read the deck from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := readDeck(c.in, args[0])
			if err != nil {
				return err
			}
			return c.withDeck(cmd.Context(), func(ctx context.Context) error {
				created, err := c.cards.ImportCards(ctx, inputs)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "Imported %d cards\n", len(created))
				return nil
			})
		},
	}
	return cmd
}

func readDeck(stdin io.Reader, path string) ([]service.NewCardInput, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read deck: %w", err)
	}

	var deck deckFile
	if err := yaml.Unmarshal(data, &deck); err != nil {
		return nil, fmt.Errorf("failed to parse deck %s: %w", path, err)
	}
	if len(deck.Cards) == 0 {
		return nil, fmt.Errorf("deck %s contains no cards", path)
	}
	return deck.Cards, nil
}

func newListCmd(c *cli) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the cards in the deck",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withDeck(cmd.Context(), func(ctx context.Context) error {
				var (
					cards []*domain.Card
					err   error
				)
				if search != "" {
					cards, err = c.cards.SearchCards(ctx, search)
				} else {
					cards, err = c.cards.ListCards(ctx)
				}
				if err != nil {
					return err
				}
				return printCards(c.out, cards)
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "only cards whose front or back contains this text")
	return cmd
}

func newDueCmd(c *cli) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "due",
		Short: "List the cards due for review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				limit = c.cfg.Review.Count
			}
			if limit < 1 {
				return fmt.Errorf("--limit must be at least 1")
			}
			return c.withDeck(cmd.Context(), func(ctx context.Context) error {
				cards, err := c.cards.GetDueCards(ctx, limit)
				if err != nil {
					return err
				}
				return printCards(c.out, cards)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of cards (default: review.count)")
	return cmd
}

func newDeleteCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <code>",
		Short: "Delete a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(strings.TrimSpace(args[0]))
			return c.withDeck(cmd.Context(), func(ctx context.Context) error {
				if err := c.cards.DeleteCard(ctx, code); err != nil {
					if errors.Is(err, service.ErrCardNotFound) {
						return fmt.Errorf("card %s not found", code)
					}
					return err
				}
				fmt.Fprintf(c.out, "Deleted card %s\n", code)
				return nil
			})
		},
	}
	return cmd
}

func printCards(out io.Writer, cards []*domain.Card) error {
	if len(cards) == 0 {
		fmt.Fprintln(out, "No cards found")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tINTERVAL\tCOUNTER\tDUE\tFRONT\tBACK")
	for _, card := range cards {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n",
			card.Code, card.Interval, card.Counter, dueLabel(card),
			truncate(card.Front, 40), truncate(card.Back, 40))
	}
	return tw.Flush()
}

func dueLabel(card *domain.Card) string {
	if card.DueAt == nil {
		return "today"
	}
	return "due " + card.DueAt.Format("2006-01-02")
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
