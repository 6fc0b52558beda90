package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/raphaelgruber/estatehub/internal/metrics"
	"github.com/raphaelgruber/estatehub/internal/models"
	"github.com/raphaelgruber/estatehub/internal/service"
	"github.com/spf13/cobra"
)

var (
	listType      string
	listMinPrice  int64
	listMaxPrice  int64
	listBedrooms  int
	listBathrooms int
	listSearch    string
	listSort      string
	listFeatured  bool
	listMine      bool
	listLimit     int
)

var (
	publishTitle       string
	publishDescription string
	publishPrice       int64
	publishBedrooms    int
	publishBathrooms   int
	publishArea        int
	publishAddress     string
	publishCity        string
	publishState       string
	publishZip         string
	publishLat         float64
	publishLng         float64
	publishImages      []string
	publishType        string
	publishFeatured    bool
)

var listingsCmd = &cobra.Command{
	Use:     "listings",
	Aliases: []string{"ls"},
	Short:   "Browse and search property listings",
	Long: `List properties with optional filtering and sorting.

All filters combine: a search query narrows the result further.

Examples:
  estatehub listings
  estatehub listings --type rent --max-price 4000
  estatehub listings --beds 3 -q seattle --sort price-low
  estatehub listings --featured --limit 3
  estatehub listings --mine`,
	Args: cobra.NoArgs,
	RunE: runListings,
}

var showCmd = &cobra.Command{
	Use:   "show <property-id>",
	Short: "Show a property in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a new listing",
	Long: `Publish a property under the signed-in account.

Examples:
  estatehub publish --title "Lakeside Cabin" --price 450000 --type sale \
    --beds 2 --baths 1 --area 980 --address "7 Shore Road" --city Kirkland \
    --state WA --zip 98033 --image https://example.com/cabin.jpg`,
	Args: cobra.NoArgs,
	RunE: runPublish,
}

func init() {
	f := listingsCmd.Flags()
	f.StringVarP(&listType, "type", "t", string(models.TypeAll), "listing type: all, sale or rent")
	f.Int64Var(&listMinPrice, "min-price", 0, "minimum price (inclusive)")
	f.Int64Var(&listMaxPrice, "max-price", 0, "maximum price (inclusive)")
	f.IntVar(&listBedrooms, "beds", 0, "minimum bedrooms")
	f.IntVar(&listBathrooms, "baths", 0, "minimum bathrooms")
	f.StringVarP(&listSearch, "search", "q", "", "search title, description, address and city")
	f.StringVarP(&listSort, "sort", "s", string(models.SortNewest), "newest, oldest, price-high or price-low")
	f.BoolVar(&listFeatured, "featured", false, "only featured listings")
	f.BoolVar(&listMine, "mine", false, "only listings owned by the signed-in user")
	f.IntVarP(&listLimit, "limit", "n", 0, "max results (0 = all)")

	p := publishCmd.Flags()
	p.StringVar(&publishTitle, "title", "", "listing title (required)")
	p.StringVar(&publishDescription, "description", "", "description, may contain simple HTML")
	p.Int64Var(&publishPrice, "price", 0, "price in dollars (monthly for rentals)")
	p.IntVar(&publishBedrooms, "beds", 0, "bedrooms")
	p.IntVar(&publishBathrooms, "baths", 0, "bathrooms")
	p.IntVar(&publishArea, "area", 0, "area in sq ft")
	p.StringVar(&publishAddress, "address", "", "street address")
	p.StringVar(&publishCity, "city", "", "city")
	p.StringVar(&publishState, "state", "", "state")
	p.StringVar(&publishZip, "zip", "", "ZIP code")
	p.Float64Var(&publishLat, "lat", 0, "latitude")
	p.Float64Var(&publishLng, "lng", 0, "longitude")
	p.StringSliceVar(&publishImages, "image", nil, "image URL (repeatable, at least one)")
	p.StringVarP(&publishType, "type", "t", string(models.ListingSale), "sale or rent")
	p.BoolVar(&publishFeatured, "featured", false, "mark as featured")
	_ = publishCmd.MarkFlagRequired("title")
}

func runListings(cmd *cobra.Command, args []string) error {
	order, ok := models.ParseSortOrder(listSort)
	if !ok {
		return fmt.Errorf("invalid sort order %q", listSort)
	}
	filter, err := listingFilter(cmd)
	if err != nil {
		return err
	}

	var props []models.Property
	err = withProgress(cmd.Context(), "Loading listings", svc.Latency().Delay(metrics.OpListProperties), func(ctx context.Context) error {
		var err error
		props, err = svc.ListProperties(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("list properties: %w", err)
	}

	appState.SetProperties(props)
	if !filter.IsEmpty() {
		appState.SetFilteredProperties(service.FilterProperties(appState.Properties(), filter))
	}

	result := appState.FilteredProperties()
	if listFeatured {
		result = service.FeaturedProperties(result, 0)
	}
	if listMine {
		user, err := requireSession()
		if err != nil {
			return err
		}
		result = service.PropertiesByOwner(result, user.ID)
	}
	result = service.SortProperties(result, order)
	if listLimit > 0 && len(result) > listLimit {
		result = result[:listLimit]
	}

	renderPropertyTable(cmd.OutOrStdout(), result)
	return nil
}

// listingFilter builds a filter from the flags the user actually set.
func listingFilter(cmd *cobra.Command) (models.PropertyFilter, error) {
	f := models.PropertyFilter{
		Type:        models.ListingType(listType),
		SearchQuery: listSearch,
	}
	if f.Type != models.TypeAll && !f.Type.Valid() {
		return f, fmt.Errorf("invalid listing type %q", listType)
	}

	flags := cmd.Flags()
	if flags.Changed("min-price") {
		f.MinPrice = &listMinPrice
	}
	if flags.Changed("max-price") {
		f.MaxPrice = &listMaxPrice
	}
	if flags.Changed("beds") {
		f.Bedrooms = &listBedrooms
	}
	if flags.Changed("baths") {
		f.Bathrooms = &listBathrooms
	}
	return f, nil
}

func runShow(cmd *cobra.Command, args []string) error {
	var property *models.Property
	err := withProgress(cmd.Context(), "Loading property", svc.Latency().Delay(metrics.OpGetProperty), func(ctx context.Context) error {
		var err error
		property, err = svc.GetProperty(ctx, args[0])
		return err
	})
	if err != nil {
		return err
	}

	appState.SelectProperty(*property)
	renderProperty(cmd.OutOrStdout(), *appState.SelectedProperty(), time.Now())
	return nil
}

func runPublish(cmd *cobra.Command, args []string) error {
	user, err := requireSession()
	if err != nil {
		return err
	}

	draft := models.PropertyDraft{
		Title:       publishTitle,
		Description: publishDescription,
		Price:       publishPrice,
		Bedrooms:    publishBedrooms,
		Bathrooms:   publishBathrooms,
		Area:        publishArea,
		Location: models.Location{
			Address: publishAddress,
			City:    publishCity,
			State:   publishState,
			Zip:     publishZip,
			Lat:     publishLat,
			Lng:     publishLng,
		},
		Images:    publishImages,
		Featured:  publishFeatured,
		Type:      models.ListingType(publishType),
		OwnerID:   user.ID,
		OwnerName: user.Name,
	}

	var property *models.Property
	err = withProgress(cmd.Context(), "Publishing", svc.Latency().Delay(metrics.OpPublishProperty), func(ctx context.Context) error {
		var err error
		property, err = svc.PublishProperty(ctx, draft)
		return err
	})
	if err != nil {
		return fmt.Errorf("publish property: %w", err)
	}

	appState.SelectProperty(*property)
	selected := appState.SelectedProperty()
	msg := fmt.Sprintf("✓ Published %s (%s)", selected.Title, selected.ID)
	fmt.Fprintln(cmd.OutOrStdout(), defaultTheme.successStyle().Render(msg))
	return nil
}
