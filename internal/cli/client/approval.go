package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ApprovalRecord represents an approval record returned by the API.
type ApprovalRecord struct {
	ID            string `json:"id"`
	TenantID      string `json:"tenant_id"`
	LocalRecordID string `json:"local_record_id"`
	RemoteDocID   string `json:"remote_doc_id,omitempty"`
	ChangeType    string `json:"change_type"`
	SubmittedBy   string `json:"submitted_by"`
	SubmittedAt   string `json:"submitted_at"`
	Status        string `json:"status"`
	ReviewedBy    string `json:"reviewed_by,omitempty"`
	ReviewedAt    string `json:"reviewed_at,omitempty"`
	ReviewerNotes string `json:"reviewer_notes,omitempty"`
}

// SubmitSkip reports an item the service declined to submit.
type SubmitSkip struct {
	ItemID string `json:"item_id"`
	Reason string `json:"reason"`
}

// SubmitResponse represents the submit API response.
type SubmitResponse struct {
	Submitted []ApprovalRecord `json:"submitted"`
	Skipped   []SubmitSkip     `json:"skipped,omitempty"`
}

// SubmitCmd creates the submit command.
func SubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <item_id> [item_id...]",
		Short: "Submit drafts for review",
		Long:  "Submits draft knowledge items for approval. Requires the admin role or above.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runSubmit(cmd, args, outputJSON)
		},
	}

	return cmd
}

func runSubmit(cmd *cobra.Command, itemIDs []string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/approvals/submit", map[string][]string{"item_ids": itemIDs})
	if err != nil {
		return fmt.Errorf("failed to submit for approval: %w", err)
	}

	var submitResp SubmitResponse
	if err := json.Unmarshal(resp.Data, &submitResp); err != nil {
		return fmt.Errorf("failed to parse submit response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(submitResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	for _, rec := range submitResp.Submitted {
		fmt.Printf("Submitted %s (%s) -> approval %s\n", rec.LocalRecordID, rec.ChangeType, rec.ID)
	}
	for _, skip := range submitResp.Skipped {
		fmt.Printf("Skipped %s: %s\n", skip.ItemID, skip.Reason)
	}

	return nil
}

// PendingCmd creates the pending command.
func PendingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pending",
		Short:   "List pending approvals",
		Aliases: []string{"approvals"},
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runPending(cmd, outputJSON)
		},
	}

	return cmd
}

func runPending(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/approvals/")
	if err != nil {
		return fmt.Errorf("failed to list pending approvals: %w", err)
	}

	var records []ApprovalRecord
	if err := json.Unmarshal(resp.Data, &records); err != nil {
		return fmt.Errorf("failed to parse approval records: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(records) == 0 {
		fmt.Println("No pending approvals.")
		return nil
	}

	fmt.Printf("Found %d pending approvals:\n\n", len(records))
	for i, rec := range records {
		fmt.Printf("%d. %s\n", i+1, rec.ID)
		fmt.Printf("   Item: %s (%s)\n", rec.LocalRecordID, rec.ChangeType)
		fmt.Printf("   Submitted by %s at %s\n", rec.SubmittedBy, rec.SubmittedAt)
		if i < len(records)-1 {
			fmt.Println(strings.Repeat("-", 40))
		}
	}

	return nil
}

// ApproveCmd creates the approve command.
func ApproveCmd() *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "approve <approval_id>",
		Short: "Approve a pending change",
		Long:  "Approves a pending approval record, publishing the change to the hub. Requires the super-reviewer role.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runResolve(cmd, args[0], "approve", notes, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Reviewer notes")

	return cmd
}

// RejectCmd creates the reject command.
func RejectCmd() *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "reject <approval_id>",
		Short: "Reject a pending change",
		Long:  "Rejects a pending approval record, reverting the item. Requires the super-reviewer role.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runResolve(cmd, args[0], "reject", notes, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Reviewer notes")

	return cmd
}

func runResolve(cmd *cobra.Command, approvalID, decision, notes string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	body := map[string]string{"decision": decision}
	if notes != "" {
		body["notes"] = notes
	}

	resp, err := api.Post(fmt.Sprintf("/approvals/%s/resolve", approvalID), body)
	if err != nil {
		return fmt.Errorf("failed to resolve approval: %w", err)
	}

	var rec ApprovalRecord
	if err := json.Unmarshal(resp.Data, &rec); err != nil {
		return fmt.Errorf("failed to parse approval record: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(rec, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Approval %s: %s (item %s)\n", rec.ID, rec.Status, rec.LocalRecordID)
	}

	return nil
}
