package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"kairo/internal/config"
	"kairo/internal/dto"
	"kairo/internal/infra"
	"kairo/internal/worker"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Aplica las migraciones pendientes",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDB()
		if err != nil {
			return err
		}
		if err := infra.RunMigrations(db); err != nil {
			return err
		}
		log.Info().Msg("migrations applied")
		return nil
	},
}

var antiguedadCmd = &cobra.Command{
	Use:   "antiguedad",
	Short: "Imprime el reporte de antigüedad de saldos de una empresa",
	Example: `  ledgerctl antiguedad --empresa 0d9a4c2b-5e61-4f0e-8a3c-2b7d1e9f6a10
  ledgerctl antiguedad --empresa 0d9a4c2b-5e61-4f0e-8a3c-2b7d1e9f6a10 --tipo por_pagar`,
	RunE: func(cmd *cobra.Command, args []string) error {
		empresaID, err := empresaFlag(cmd)
		if err != nil {
			return err
		}
		tipo, _ := cmd.Flags().GetString("tipo")

		svcs, err := services()
		if err != nil {
			return err
		}
		rep, err := svcs.Cuentas.Antiguedad(cmd.Context(), empresaID, tipo)
		if err != nil {
			return err
		}
		printAntiguedad(rep)
		return nil
	},
}

func printAntiguedad(rep *dto.AntiguedadResponse) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CUENTA\tTIPO\tMONEDA\tSALDO\tVENCE\tDIAS\tBANDA")
	for _, c := range rep.Cuentas {
		vence := "-"
		if c.VenceAt != nil {
			vence = c.VenceAt.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			c.ID, c.Tipo, c.MonedaCodigo, c.Saldo.StringFixed(2), vence, c.DiasVencida, c.Banda)
	}
	fmt.Fprintln(w)
	for _, m := range rep.Totales {
		for _, b := range m.Bandas {
			if b.Cantidad == 0 {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", m.MonedaCodigo, b.Banda, b.Cantidad, b.Saldo.StringFixed(2))
		}
	}
	_ = w.Flush()
}

var tasaCmd = &cobra.Command{
	Use:   "tasa",
	Short: "Fija manualmente la tasa contra la base de una moneda",
	Example: `  ledgerctl tasa --empresa 0d9a4c2b-5e61-4f0e-8a3c-2b7d1e9f6a10 --codigo GTQ --tasa 0.13`,
	RunE: func(cmd *cobra.Command, args []string) error {
		empresaID, err := empresaFlag(cmd)
		if err != nil {
			return err
		}
		codigo, _ := cmd.Flags().GetString("codigo")
		raw, _ := cmd.Flags().GetString("tasa")
		tasa, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("--tasa inválida: %w", err)
		}

		svcs, err := services()
		if err != nil {
			return err
		}
		n, err := svcs.Monedas.ActualizarTasas(cmd.Context(), empresaID, map[string]decimal.Decimal{codigo: tasa})
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("ninguna moneda actualizada: %s no existe, es la base, o ya tiene esa tasa", strings.ToUpper(codigo))
		}
		log.Info().Str("codigo", strings.ToUpper(codigo)).Str("tasa", tasa.String()).Msg("rate updated")
		return nil
	},
}

var dlqCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Inspecciona o reencola trabajos fallidos",
}

var dlqReplayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Devuelve trabajos de la DLQ a su cola original",
	RunE: func(cmd *cobra.Command, args []string) error {
		cola, _ := cmd.Flags().GetString("cola")
		limite, _ := cmd.Flags().GetInt("max")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		rdb, err := infra.NewRedis(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()

		ctx := cmd.Context()
		pending, err := worker.DLQLength(ctx, rdb, cola)
		if err != nil {
			return err
		}
		moved, err := worker.ReplayDLQ(ctx, rdb, cola, limite)
		log.Info().Str("cola", cola).Int64("pendientes", pending).Int("reencolados", moved).Msg("dlq replay")
		return err
	},
}

func init() {
	antiguedadCmd.Flags().String("empresa", "", "UUID de la empresa")
	antiguedadCmd.Flags().String("tipo", "", "por_cobrar | por_pagar (vacío = ambos)")
	_ = antiguedadCmd.MarkFlagRequired("empresa")

	tasaCmd.Flags().String("empresa", "", "UUID de la empresa")
	tasaCmd.Flags().String("codigo", "", "Código de la moneda")
	tasaCmd.Flags().String("tasa", "", "Valor de una unidad en la moneda base")
	_ = tasaCmd.MarkFlagRequired("empresa")
	_ = tasaCmd.MarkFlagRequired("codigo")
	_ = tasaCmd.MarkFlagRequired("tasa")

	dlqReplayCmd.Flags().String("cola", worker.QueueRecordatorios, "Cola original")
	dlqReplayCmd.Flags().Int("max", 100, "Máximo de trabajos a reencolar")
	dlqCmd.AddCommand(dlqReplayCmd)

	rootCmd.AddCommand(migrateCmd, antiguedadCmd, tasaCmd, dlqCmd)
}
