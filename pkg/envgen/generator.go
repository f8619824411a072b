package envgen

import (
	"fmt"
	"math/rand"
	"sort"
)

const (
	networkCIDR   = "172.28.0.0/24"
	gatewayIP     = "172.28.0.1"
	firstHostPort = 20000
)

// Service is one generated container placement.
type Service struct {
	Name       string `json:"name" yaml:"name"`
	IP         string `json:"ip" yaml:"ip"`
	Type       string `json:"type" yaml:"type"`
	Technology string `json:"technology" yaml:"technology"`
	Image      string `json:"-" yaml:"-"`
	Ports      []Port `json:"ports" yaml:"ports"`
}

// Port is one published container port.
type Port struct {
	Container int `json:"container" yaml:"container"`
	Host      int `json:"host" yaml:"host"`
}

// Manifest is the deterministic body of a generated environment: everything
// except the generated_at timestamp requirement.
type Manifest struct {
	Seed     int64     `json:"seed" yaml:"seed"`
	Network  string    `json:"network" yaml:"network"`
	Gateway  string    `json:"gateway" yaml:"gateway"`
	Services []Service `json:"services" yaml:"services"`
}

// Generate deterministically builds a Manifest from seed. It always
// constructs its own *rand.Rand from the seed rather than touching the
// package-level global source, so repeated calls with the same seed are
// independent of any other in-process RNG use.
func Generate(seed int64) (Manifest, error) {
	rng := rand.New(rand.NewSource(seed))

	usedIPs := map[string]bool{gatewayIP: true}
	usedPorts := map[int]bool{}
	nextHostPort := firstHostPort

	manifest := Manifest{Seed: seed, Network: networkCIDR, Gateway: gatewayIP}

	nameCounters := map[string]int{}
	hostOctet := 2

	for _, category := range poolOrder {
		for _, svc := range pools[category] {
			count := svc.MinCount
			if svc.MaxCount > svc.MinCount {
				count += rng.Intn(svc.MaxCount - svc.MinCount + 1)
			}

			for i := 0; i < count; i++ {
				ip, octet, err := nextIP(hostOctet, usedIPs)
				if err != nil {
					return Manifest{}, err
				}
				hostOctet = octet

				hostPort := nextHostPort
				for usedPorts[hostPort] {
					hostPort++
				}
				usedPorts[hostPort] = true
				nextHostPort = hostPort + 1

				key := svc.Department + "-" + svc.Technology
				nameCounters[key]++
				name := fmt.Sprintf("target-%s-%s-%02d", svc.Department, svc.Technology, nameCounters[key])

				manifest.Services = append(manifest.Services, Service{
					Name:       name,
					IP:         ip,
					Type:       category,
					Technology: svc.Technology,
					Image:      svc.Image,
					Ports:      []Port{{Container: svc.Port, Host: hostPort}},
				})
			}
		}
	}

	sort.SliceStable(manifest.Services, func(i, j int) bool {
		return manifest.Services[i].Name < manifest.Services[j].Name
	})

	return manifest, nil
}

// nextIP allocates the next disjoint host address in 172.28.0.0/24, starting
// the host octet search at startOctet and skipping the reserved gateway (.1)
// and broadcast (.255) addresses.
func nextIP(startOctet int, used map[string]bool) (string, int, error) {
	for octet := startOctet; octet < 255; octet++ {
		ip := fmt.Sprintf("172.28.0.%d", octet)
		if used[ip] {
			continue
		}
		used[ip] = true
		return ip, octet + 1, nil
	}
	return "", 0, fmt.Errorf("envgen: exhausted host addresses in %s", networkCIDR)
}
