// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package doc

import (
	"embed"

	"gopkg.in/yaml.v3"
)

// FS embeds the Open API spec.
//
//go:embed stakepool.yaml
var FS embed.FS

var (
	version string
	paths   []string
)

// Version open api version
func Version() string {
	return version
}

// Paths lists the documented paths.
func Paths() []string {
	return paths
}

type openAPIInfo struct {
	Info struct {
		Version string
	}
	Paths yaml.Node
}

func init() {
	content, err := FS.ReadFile("stakepool.yaml")
	if err != nil {
		panic(err)
	}

	var oai openAPIInfo
	if err := yaml.Unmarshal(content, &oai); err != nil {
		panic(err)
	}
	version = oai.Info.Version
	// mapping nodes alternate keys and values, keeping the document order
	for i := 0; i+1 < len(oai.Paths.Content); i += 2 {
		paths = append(paths, oai.Paths.Content[i].Value)
	}
}
