package render

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cleared-dev/shopbooks/internal/model"
	"github.com/cleared-dev/shopbooks/internal/pipeline"
)

// Inventory writes the warehouse and shop positions of rep followed by the
// stock check.
func Inventory(w io.Writer, rep *pipeline.Report, f Formatter) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Inventory as of %s\n", rep.AsOf.Format(model.DateFormat))

	section(tw, "Warehouse")
	fmt.Fprintf(tw, "  Item\tQuantity\tCost\tValue\n")
	for _, l := range rep.Warehouse {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", l.Item, l.Quantity, f.Format(l.Cost), f.Format(l.Value))
	}

	section(tw, "Shops")
	fmt.Fprintf(tw, "  Item\tShop\tQuantity\tCost\tValue\n")
	for _, l := range rep.Shops {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", l.Item, l.Shop, l.Quantity, f.Format(l.Cost), f.Format(l.Value))
	}

	section(tw, "Stock Check")
	fmt.Fprintf(tw, "  Item\tShop\tQuantity\tSlots\tEmpty\tLevel\tStatus\n")
	for _, a := range rep.Alerts {
		ratio := "-"
		if a.RatioDefined {
			ratio = a.EmptyRatio.StringFixed(2)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%d\t%s\t%s\t%s\n", a.Item, a.Shop, a.Quantity, a.Slots, ratio, a.Level, a.Status())
	}

	for _, ft := range rep.Faults {
		if ft.Kind == model.FaultInsufficientStock {
			fmt.Fprintf(tw, "  warning: %s\n", ft.Message)
		}
	}
	return tw.Flush()
}
