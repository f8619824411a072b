package envgen

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

type composeDoc struct {
	Version  string                    `yaml:"version"`
	Services map[string]composeService `yaml:"services"`
	Networks map[string]composeNetwork `yaml:"networks"`
}

type composeService struct {
	Image    string                            `yaml:"image"`
	Ports    []string                          `yaml:"ports"`
	Networks map[string]composeServiceNetwork `yaml:"networks"`
}

type composeServiceNetwork struct {
	IPV4Address string `yaml:"ipv4_address"`
}

type composeNetwork struct {
	Driver string             `yaml:"driver"`
	IPAM   composeNetworkIPAM `yaml:"ipam"`
}

type composeNetworkIPAM struct {
	Config []composeIPAMConfig `yaml:"config"`
}

type composeIPAMConfig struct {
	Subnet  string `yaml:"subnet"`
	Gateway string `yaml:"gateway"`
}

const composeNetworkName = "envgen_net"

// ComposeYAML renders manifest as a docker-compose document.
func ComposeYAML(manifest Manifest) ([]byte, error) {
	doc := composeDoc{
		Version:  "3.9",
		Services: make(map[string]composeService, len(manifest.Services)),
		Networks: map[string]composeNetwork{
			composeNetworkName: {
				Driver: "bridge",
				IPAM: composeNetworkIPAM{
					Config: []composeIPAMConfig{
						{Subnet: manifest.Network, Gateway: manifest.Gateway},
					},
				},
			},
		},
	}

	for _, svc := range manifest.Services {
		ports := make([]string, 0, len(svc.Ports))
		for _, p := range svc.Ports {
			ports = append(ports, portMapping(p))
		}
		doc.Services[svc.Name] = composeService{
			Image: svc.Image,
			Ports: ports,
			Networks: map[string]composeServiceNetwork{
				composeNetworkName: {IPV4Address: svc.IP},
			},
		}
	}

	return yaml.Marshal(doc)
}

func portMapping(p Port) string {
	return strconv.Itoa(p.Host) + ":" + strconv.Itoa(p.Container)
}
