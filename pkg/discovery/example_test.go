package discovery_test

import (
	"context"
	"fmt"
	"time"

	"github.com/rescp17/dnssdbridge/pkg/discovery"
	"github.com/rescp17/dnssdbridge/pkg/engine"
	"github.com/rescp17/dnssdbridge/pkg/engine/enginetest"
)

func ExampleClient_Browse() {
	// A scripted in-process engine stands in for the system daemon.
	fake := enginetest.New()
	client := discovery.New(fake)

	stream, err := client.Browse(0, discovery.InterfaceAny, "_http._tcp", "")
	if err != nil {
		fmt.Println("browse:", err)
		return
	}
	defer stream.Close()

	fake.LastRef().DeliverBrowse(
		enginetest.BrowseReply{Flags: engine.FlagAdd | engine.FlagMoreComing, Name: "printer", Type: "_http._tcp", Domain: "local."},
		enginetest.BrowseReply{Flags: engine.FlagAdd, Name: "scanner", Type: "_http._tcp", Domain: "local."},
	)

	batch, err := stream.NextBatch(context.Background())
	if err != nil {
		fmt.Println("next:", err)
		return
	}
	for _, ev := range batch {
		fmt.Printf("%s %s.%s.%s\n", ev.Change, ev.Name, ev.Type, ev.Domain)
	}
	// Output:
	// added printer._http._tcp.local.
	// added scanner._http._tcp.local.
}

func ExampleClient_Resolve() {
	fake := enginetest.New()
	client := discovery.New(fake)

	go func() {
		// In production the reply arrives from the daemon; here the
		// test engine scripts it.
		for fake.LastRef() == nil {
			time.Sleep(time.Millisecond)
		}
		fake.LastRef().DeliverResolve(enginetest.ResolveReply{
			FullName: "printer._http._tcp.local.",
			Host:     "bar.local.",
			Port:     8080,
		})
	}()

	svc, err := client.Resolve(context.Background(), 0, discovery.InterfaceAny,
		"printer", "_http._tcp", "local.")
	if err != nil {
		fmt.Println("resolve:", err)
		return
	}
	fmt.Printf("%s -> %s:%d\n", svc.FullName, svc.Host, svc.Port)
	// Output:
	// printer._http._tcp.local. -> bar.local.:8080
}

func ExampleConstructFullName() {
	full, err := discovery.ConstructFullName("web.server", "_https._tcp", "local")
	if err != nil {
		fmt.Println("construct:", err)
		return
	}
	fmt.Println(full)
	// Output:
	// web\.server._https._tcp.local.
}
