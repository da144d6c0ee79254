package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"evalgo.org/assetd/internal/importer"
	"evalgo.org/assetd/internal/storage"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import assets or recovery keys from files",
}

var importAssetsCmd = &cobra.Command{
	Use:   "assets <file.csv|file.xlsx>",
	Short: "Insert every row of a CSV or XLSX export as a new asset",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportAssets,
}

var importBitLockerCmd = &cobra.Command{
	Use:   "bitlocker <C_recovery.txt>",
	Short: "Store the BitLocker recovery key of one drive of an asset",
	Long: `Store the recovery key found in a BitLocker export file.

The drive letter is taken from the file name, which must start with the
letter and an underscore (e.g. C_recovery.txt). An existing key for the
same drive of the asset is overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportBitLocker,
}

var importAssetID uint

func init() {
	importBitLockerCmd.Flags().UintVar(&importAssetID, "asset", 0, "id of the asset the key belongs to")
	_ = importBitLockerCmd.MarkFlagRequired("asset")

	importCmd.AddCommand(importAssetsCmd)
	importCmd.AddCommand(importBitLockerCmd)
}

func openImporter() (*importer.Importer, *storage.Storage, error) {
	log := newLogger()
	store, err := storage.Open(cfg.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return importer.New(store, log, nil), store, nil
}

func runImportAssets(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	im, store, err := openImporter()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	n, err := im.ImportAssets(cmd.Context(), args[0], f)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Imported %d assets from %s\n", n, args[0])
	return nil
}

func runImportBitLocker(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	im, store, err := openImporter()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	key, err := im.ImportBitLocker(cmd.Context(), importAssetID, args[0], content)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Stored recovery key for drive %s of asset %d\n", key.Drive, key.AssetID)
	return nil
}
