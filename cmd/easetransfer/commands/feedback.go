package commands

import (
	"fmt"
	"time"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/cli/prompt"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	feedbackRating  int
	feedbackMessage string
	feedbackAPIPort int
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Rate your transfer experience",
	Long: `Send a rating and optional message to the local hub.

Feedback is appended to the hub's feedback log on disk; nothing leaves
the machine. Run without flags for an interactive prompt.

Examples:
  # Interactive prompt
  easetransfer feedback

  # Non-interactive
  easetransfer feedback --rating 5 --message "flawless"`,
	RunE: runFeedback,
}

func init() {
	feedbackCmd.Flags().IntVarP(&feedbackRating, "rating", "r", 0, "Rating from 1 (poor) to 5 (excellent)")
	feedbackCmd.Flags().StringVarP(&feedbackMessage, "message", "m", "", "Optional free-form message")
	feedbackCmd.Flags().IntVar(&feedbackAPIPort, "api-port", 0, "API server port (default: from config)")
}

func runFeedback(cmd *cobra.Command, args []string) error {
	rating := feedbackRating
	message := feedbackMessage

	if rating == 0 {
		var err error
		rating, err = prompt.Rating("How was your transfer experience?")
		if err != nil {
			if prompt.IsAborted(err) {
				fmt.Println("Feedback cancelled.")
				return nil
			}
			return err
		}

		if !cmd.Flags().Changed("message") {
			message, err = prompt.OptionalText("Anything to add")
			if err != nil {
				if prompt.IsAborted(err) {
					fmt.Println("Feedback cancelled.")
					return nil
				}
				return err
			}
		}
	}

	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", resolveAPIPort(feedbackAPIPort))
	client := apiclient.New(baseURL).WithTimeout(5 * time.Second)

	if err := client.SendFeedback(rating, message); err != nil {
		return fmt.Errorf("failed to send feedback (is the hub running?): %w", err)
	}

	fmt.Println("Thanks! Feedback recorded.")
	return nil
}
