package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp/stockledger/inventory"
)

var (
	adjustLocation  string
	adjustItem      string
	adjustVariant   string
	adjustDelta     int64
	adjustReference string
	adjustUser      string

	reconcileRepair bool
	reconcileJSON   bool
)

var adjustCmd = &cobra.Command{
	Use:   "adjust",
	Short: "Apply one stock adjustment",
	Long: `Adds --delta base units (negative to remove) of a variant at a location,
writing the inventory record and its movement in one save.`,
	RunE: runAdjust,
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare inventory records with movement replay",
	RunE:  runReconcile,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the whole snapshot as JSON",
	RunE:  runExport,
}

func init() {
	adjustCmd.Flags().StringVar(&adjustLocation, "location", "", "location id")
	adjustCmd.Flags().StringVar(&adjustItem, "item", "", "item id")
	adjustCmd.Flags().StringVar(&adjustVariant, "variant", "", "variant id")
	adjustCmd.Flags().Int64Var(&adjustDelta, "delta", 0, "quantity change in base units")
	adjustCmd.Flags().StringVar(&adjustReference, "reference", "", "free-text reference")
	adjustCmd.Flags().StringVar(&adjustUser, "user", inventory.SeedAdminID, "user id recorded on the movement")
	_ = adjustCmd.MarkFlagRequired("location")
	_ = adjustCmd.MarkFlagRequired("item")
	_ = adjustCmd.MarkFlagRequired("variant")
	_ = adjustCmd.MarkFlagRequired("delta")

	reconcileCmd.Flags().BoolVar(&reconcileRepair, "repair", false, "rewrite drifted records from the movement log")
	reconcileCmd.Flags().BoolVar(&reconcileJSON, "json", false, "output the report as JSON")

	rootCmd.AddCommand(adjustCmd, reconcileCmd, exportCmd)
}

func runAdjust(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	qty, err := newLedger(store).AdjustStock(ctx, inventory.AdjustInput{
		LocationID: adjustLocation,
		ItemID:     adjustItem,
		VariantID:  adjustVariant,
		Delta:      adjustDelta,
		Reference:  adjustReference,
		UserID:     adjustUser,
	})
	if err != nil {
		return fmt.Errorf("adjust failed: %w", err)
	}

	cmd.Printf("%s: %d\n", inventory.InventoryID(adjustLocation, adjustVariant), qty)
	return nil
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	rec := inventory.NewReconciler(store, logger)
	var report *inventory.Report
	if reconcileRepair {
		report, err = rec.Repair(ctx)
	} else {
		report, err = rec.Check(ctx)
	}
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}

	if reconcileJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		printReport(cmd, report)
	}

	if !reconcileRepair && !report.Clean() {
		return errors.New("inventory drift detected; rerun with --repair")
	}
	return nil
}

func printReport(cmd *cobra.Command, report *inventory.Report) {
	cmd.Printf("Checked %d records against %d movements\n", report.Records, report.Movements)
	if report.Clean() {
		cmd.Println("No drift found.")
		return
	}
	for _, d := range report.Drifts {
		cmd.Printf("  %-18s %s  snapshot=%d replay=%d movements=%d\n",
			d.Kind, d.InventoryID, d.SnapshotQuantity, d.ReplayQuantity, d.Movements)
		if d.Detail != "" {
			cmd.Printf("  %-18s %s\n", "", d.Detail)
		}
	}
	for _, id := range report.SkippedMovements {
		cmd.Printf("  %-18s %s\n", "skipped_movement", id)
	}
	if report.Repaired > 0 {
		cmd.Printf("Repaired %d records.\n", report.Repaired)
	}
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	snap, err := store.Snapshot(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
