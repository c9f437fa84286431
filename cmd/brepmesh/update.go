// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/gogpu/brepio"
	"github.com/gogpu/brepio/internal/scenefile"
	"github.com/spf13/cobra"
)

func newUpdateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [flags] scene.hcl",
		Short: "Re-mesh a scene and print per-face triangle counts",
		Long: `Discards and rebuilds the triangulation of a scene without producing
a document. Unlike interrogate, the deflection is used as given and
must be positive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scenefile.Load(args[0])
			if err != nil {
				return err
			}
			s, err := a.session()
			if err != nil {
				return err
			}
			if err := s.UpdateTessellation(sc.Shape, a.cfg.Deflection); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FACE\tNAME\tNODES\tTRIANGLES")
			k := s.Kernel()
			for h := range brepio.Faces(k, sc.Shape) {
				name := "-"
				if n, ok := h.Face.(interface{ Name() string }); ok {
					name = n.Name()
				}
				nodes, tris := 0, 0
				if tri, _, ok := k.GetTriangulation(h.Face); ok {
					nodes, tris = tri.NodeCount(), tri.TriangleCount()
				}
				fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", h.Ordinal, name, nodes, tris)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Float64Var(&a.deflection, "deflection", brepio.DefaultDeflection, "meshing deflection, relative to part size")
	return cmd
}
