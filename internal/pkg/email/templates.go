package email

// Email templates in HTML format

// BaseTemplate is the base layout for all emails
const BaseTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body {
            margin: 0;
            padding: 0;
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background-color: #f4f5f7;
            color: #1f2933;
        }
        .container {
            max-width: 600px;
            margin: 0 auto;
            padding: 40px 20px;
        }
        .card {
            background: #ffffff;
            border-radius: 12px;
            padding: 32px;
            border: 1px solid #e4e7eb;
        }
        .logo {
            text-align: center;
            margin-bottom: 24px;
        }
        .logo h1 {
            font-size: 28px;
            color: #2563eb;
            margin: 0;
        }
        h2 {
            color: #1f2933;
            font-size: 24px;
            margin: 0 0 16px;
        }
        p {
            color: #52606d;
            font-size: 16px;
            line-height: 1.6;
            margin: 0 0 16px;
        }
        .amount {
            font-size: 22px;
            font-weight: 700;
            color: #2563eb;
        }
        .btn {
            display: inline-block;
            background: #2563eb;
            color: #ffffff !important;
            text-decoration: none;
            padding: 14px 28px;
            border-radius: 8px;
            font-weight: 600;
        }
        .footer {
            text-align: center;
            color: #9aa5b1;
            font-size: 13px;
            margin-top: 24px;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="card">
            <div class="logo"><h1>GameBay</h1></div>
            {{.Content}}
        </div>
        <div class="footer">GameBay — chợ tài khoản game uy tín</div>
    </div>
</body>
</html>
`

// ListingApprovedTemplate notifies the seller their listing went live
const ListingApprovedTemplate = `
<h2>Tin đăng đã được duyệt</h2>
<p>Tài khoản rank <strong>{{.RankLabel}}</strong> giá <span class="amount">{{.Price}}₫</span> của bạn đã được duyệt và hiển thị trên chợ.</p>
<p><a class="btn" href="{{.ListingURL}}">Xem tin đăng</a></p>
`

// ListingRejectedTemplate notifies the seller their listing was rejected
const ListingRejectedTemplate = `
<h2>Tin đăng bị từ chối</h2>
<p>Tin đăng tài khoản rank <strong>{{.RankLabel}}</strong> của bạn đã bị từ chối.</p>
<p>Lý do: {{.Reason}}</p>
<p>Bạn có thể chỉnh sửa và đăng lại tin mới.</p>
`

// TopUpApprovedTemplate notifies the user their top-up was credited
const TopUpApprovedTemplate = `
<h2>Nạp tiền thành công</h2>
<p>Yêu cầu nạp <span class="amount">{{.Amount}}₫</span> của bạn đã được duyệt.</p>
<p>Số dư ví hiện tại: <span class="amount">{{.Balance}}₫</span></p>
`

// TopUpRejectedTemplate notifies the user their top-up was rejected
const TopUpRejectedTemplate = `
<h2>Yêu cầu nạp tiền bị từ chối</h2>
<p>Yêu cầu nạp <span class="amount">{{.Amount}}₫</span> của bạn đã bị từ chối.</p>
<p>Lý do: {{.Reason}}</p>
`

// PurchaseVerifiedTemplate confirms the buyer's payment was received
const PurchaseVerifiedTemplate = `
<h2>Thanh toán thành công</h2>
<p>Chúng tôi đã nhận được thanh toán <span class="amount">{{.Total}}₫</span> cho tài khoản rank <strong>{{.RankLabel}}</strong>.</p>
<p>Thông tin tài khoản sẽ được bàn giao trong thời gian sớm nhất.</p>
`

// PayoutPaidTemplate notifies the seller a payout was disbursed
const PayoutPaidTemplate = `
<h2>Đã thanh toán tiền bán hàng</h2>
<p>Khoản thanh toán <span class="amount">{{.Amount}}₫</span> cho doanh thu tháng {{.Month}}/{{.Year}} đã được chuyển.</p>
<p>Vui lòng xác nhận khi bạn nhận được tiền.</p>
<p><a class="btn" href="{{.PayoutURL}}">Xác nhận đã nhận</a></p>
`

// PayoutReceivedTemplate notifies the admin a seller confirmed receipt
const PayoutReceivedTemplate = `
<h2>Người bán đã xác nhận nhận tiền</h2>
<p>Người bán {{.SellerEmail}} đã xác nhận nhận khoản thanh toán <span class="amount">{{.Amount}}₫</span> (tháng {{.Month}}/{{.Year}}).</p>
`

// WelcomeTemplate greets a new user
const WelcomeTemplate = `
<h2>Chào mừng đến với GameBay!</h2>
<p>Xin chào {{.DisplayName}}, tài khoản của bạn đã sẵn sàng.</p>
<p>Bạn có thể nạp tiền vào ví, mua tài khoản game hoặc đăng bán ngay bây giờ.</p>
<p><a class="btn" href="{{.MarketURL}}">Vào chợ</a></p>
`
