/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/YusufShahp/CSE461Proj2/policy"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newPolicyCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "policy [dpid]",
		Short: "Print the flow rules compiled for a switch, or for every switch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dpids []uint64
			if len(args) == 1 {
				dpid, err := strconv.ParseUint(args[0], 0, 64)
				if err != nil {
					return fmt.Errorf("invalid DPID: %v", args[0])
				}
				dpids = append(dpids, dpid)
			}

			v := viper.New()
			setDefaults(v)
			v.SetConfigFile(*configFile)
			if err := v.ReadInConfig(); err != nil {
				// The defaults are enough to compile the rules.
				fmt.Fprintf(os.Stderr, "using the default configuration: %v\n", err)
			}
			conf, err := parseConfig(v)
			if err != nil {
				return err
			}

			return printPolicy(cmd.OutOrStdout(), conf, dpids...)
		},
	}
}

// printPolicy prints the rules of the switches whose DPIDs are dpids. No DPID
// means all the switches of the topology.
func printPolicy(w io.Writer, conf *config, dpids ...uint64) error {
	topo, err := loadTopology(conf.topology)
	if err != nil {
		return err
	}
	if len(dpids) == 0 {
		dpids = topo.Switches()
	}

	for _, dpid := range dpids {
		role, err := topo.RoleOf(dpid)
		if err != nil {
			return err
		}

		rules := policy.CompileWith(topo, role, policy.Options{DefaultAction: conf.network.DefaultAction})
		fmt.Fprintf(w, "# DPID=%v, Role=%v, # of rules=%v\n", dpid, role, len(rules))
		for _, v := range rules {
			fmt.Fprintln(w, v)
		}
	}

	return nil
}
