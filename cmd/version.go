// Copyright © 2021 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/ghodss/yaml"
	"github.com/kaleido-io/mintbuffer/internal/i18n"
	"github.com/spf13/cobra"
)

// Set with -ldflags at release time
var (
	BuildDate            string
	BuildCommit          string
	BuildVersionOverride string
)

var shortened bool
var output string

type Info struct {
	Version   string `json:"Version,omitempty" yaml:"Version,omitempty"`
	Commit    string `json:"Commit,omitempty" yaml:"Commit,omitempty"`
	Date      string `json:"Date,omitempty" yaml:"Date,omitempty"`
	GoVersion string `json:"GoVersion,omitempty" yaml:"GoVersion,omitempty"`
	License   string `json:"License,omitempty" yaml:"License,omitempty"`
}

func newVersionInfo() *Info {
	info := &Info{
		Version:   BuildVersionOverride,
		Commit:    BuildCommit,
		Date:      BuildDate,
		GoVersion: runtime.Version(),
		License:   "Apache-2.0",
	}
	if info.Version == "" {
		buildInfo, ok := debug.ReadBuildInfo()
		setBuildInfo(info, buildInfo, ok)
	}
	return info
}

// setBuildInfo falls back to module data stamped by "go install"
func setBuildInfo(info *Info, buildInfo *debug.BuildInfo, ok bool) {
	if !ok || buildInfo == nil {
		return
	}
	info.Version = buildInfo.Main.Version
	for _, s := range buildInfo.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "":
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.Date == "":
			info.Date = s.Value
		}
	}
}

func formatVersion(info *Info, format string) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(info, "", "  ")
	case "yaml":
		return yaml.Marshal(info)
	default:
		return nil, i18n.NewError(context.Background(), i18n.MsgInvalidOutputOption, format)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the version info",
	Long:  "Prints the version, commit and build date of the mintbuffer binary",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := newVersionInfo()
		if shortened {
			fmt.Fprintln(cmd.OutOrStdout(), info.Version)
			return nil
		}
		b, err := formatVersion(info, output)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVarP(&shortened, "short", "s", false, "Prints only the version number")
	versionCmd.Flags().StringVarP(&output, "output", "o", "json", "output format (\"yaml\"|\"json\")")
	rootCmd.AddCommand(versionCmd)
}
